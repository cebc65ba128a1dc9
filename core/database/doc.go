// Package database handles database connections and schema inspection.
//
// It provides a wrapper around GORM (Go Object Relational Mapping) to properly configure
// MySQL connections based on the application's configuration.
//
// # Connect
//
// The generic Connect function establishes a connection to the database. The loader
// core persists its response cache, source mappings and process runs here; concrete
// features add their own normalized tables.
//
// # Schema Inspection
//
// The package includes tools to inspect the database schema. The loader tables are
// managed externally, so VerifyLoaderTables lets startup report missing tables early
// instead of failing on the first cache write.
//
// # Usage
//
//	db, err := database.Connect(cfg.Database)
//	if err != nil {
//	    log.Fatal("Database connection failed", err)
//	}
//
//	missing, err := database.VerifyLoaderTables(db)
package database
