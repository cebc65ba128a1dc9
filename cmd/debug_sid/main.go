package main

import (
	"fmt"
	"log"
	"os"
	"strconv"

	"marketdata-manager/core/sid"
)

// Small identifier inspection tool:
//
//	debug_sid encode equity 42
//	debug_sid decode 1152921504606846986
func main() {
	if len(os.Args) < 3 {
		usage()
	}

	switch os.Args[1] {
	case "encode":
		if len(os.Args) != 4 {
			usage()
		}
		typ, err := sid.ParseType(os.Args[2])
		if err != nil {
			log.Fatal(err)
		}
		seq, err := strconv.ParseUint(os.Args[3], 10, 64)
		if err != nil {
			log.Fatalf("invalid sequence %q: %v", os.Args[3], err)
		}
		id, err := sid.Encode(typ, seq)
		if err != nil {
			log.Fatal(err)
		}
		fmt.Printf("%d (0x%016x)\n", id, uint64(id))

	case "decode":
		id, err := strconv.ParseInt(os.Args[2], 10, 64)
		if err != nil {
			log.Fatalf("invalid id %q: %v", os.Args[2], err)
		}
		typ, seq := sid.Decode(id)
		fmt.Printf("type=%s sequence=%d\n", typ, seq)

	default:
		usage()
	}
}

func usage() {
	fmt.Println("usage: debug_sid encode <type> <sequence> | debug_sid decode <id>")
	fmt.Println("types:")
	for _, t := range sid.Types() {
		fmt.Printf("  %s\n", t)
	}
	os.Exit(2)
}
