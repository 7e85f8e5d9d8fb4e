// Package kcap reads and writes KCAP resource packs, the container format of
// the Selene engine used by the Densha de D series.
//
// A pack starts with the "KCAP" marker and a little-endian entry count,
// followed by one fixed 84-byte directory record per entry and then the
// concatenated payloads. Payloads may be obfuscated with a 64 KiB XOR table
// derived from a password (see BuildKeyTable). The obfuscation is reversible
// and offers no security.
//
// Reading:
//
//	pack, err := kcap.Open("Data.Pack", "PackPass")
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer pack.Close()
//	data, err := pack.ReadEntry(0)
//
// Writing:
//
//	w := kcap.NewWriter()
//	if err := w.Add("local/title.png", `image\title.png`); err != nil {
//		log.Fatal(err)
//	}
//	err = w.Write(out, kcap.WithPassword("PackPass"))
package kcap
