// Package utils provides common utility functions for the market data manager.
// It holds the type conversion helpers for the loosely typed values vendor
// JSON payloads carry (prices arrive as numbers or strings depending on the
// vendor and the endpoint).
package utils
