package pix

import "fmt"

const (
	crcPoly = 0x1021
	crcInit = 0xFFFF
)

// crc16 computes CRC16/CCITT-FALSE: MSB first, no reflection, no final XOR.
func crc16(data string) uint16 {
	crc := uint16(crcInit)
	for i := 0; i < len(data); i++ {
		crc ^= uint16(data[i]) << 8
		for bit := 0; bit < 8; bit++ {
			if crc&0x8000 != 0 {
				crc = crc<<1 ^ crcPoly
			} else {
				crc <<= 1
			}
		}
	}
	return crc
}

// Checksum returns the CRC of data as four uppercase hex digits.
func Checksum(data string) string {
	return fmt.Sprintf("%04X", crc16(data))
}
