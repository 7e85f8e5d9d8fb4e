package kcap

// crc32Table is built once at package initialisation and never written again.
var crc32Table = func() [256]uint32 {
	var table [256]uint32
	const poly = 0xEDB88320
	for i := 0; i < 256; i++ {
		crc := uint32(i)
		for j := 0; j < 8; j++ {
			if crc&1 == 1 {
				crc = (crc >> 1) ^ poly
			} else {
				crc >>= 1
			}
		}
		table[i] = crc
	}
	return table
}()

func updateChecksum(crc uint32, data []byte) uint32 {
	for _, v := range data {
		crc = crc32Table[(crc^uint32(v))&0xFF] ^ (crc >> 8)
	}
	return crc
}

// Checksum returns the reflected CRC-32 of data. The pack stores it next to
// each entry name, but readers never verify it.
func Checksum(data []byte) uint32 {
	return ^updateChecksum(0xFFFFFFFF, data)
}
