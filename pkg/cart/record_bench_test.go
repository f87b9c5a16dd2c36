//go:build bench
// +build bench

package cart

import (
	"strings"
	"testing"
)

var benchmarks = []struct {
	name   string
	record Record
}{
	{
		name:   "default",
		record: Record{},
	},
	{
		name: "typical",
		record: Record{
			MapX:       73,
			MapY:       1023,
			Misc:       [MiscCount]uint16{54, 540, 999, 65535},
			PlayerName: "Fearless Concurrency",
			Switch:     [SwitchCount]bool{true, false, true},
		},
	},
	{
		name:   "long name",
		record: Record{PlayerName: strings.Repeat("x", 2000)},
	},
	{
		name:   "multi-byte name",
		record: Record{PlayerName: strings.Repeat("名前", 200)},
	},
}

func BenchmarkCodec_Encode(b *testing.B) {
	codec := NewCodec()

	for _, bm := range benchmarks {
		b.Run(bm.name, func(b *testing.B) {
			b.ReportAllocs()
			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				_ = codec.Encode(bm.record)
			}
		})
	}
}

func BenchmarkCodec_Decode(b *testing.B) {
	codec := NewCodec()

	for _, bm := range benchmarks {
		text := codec.Encode(bm.record)
		b.Run(bm.name, func(b *testing.B) {
			b.SetBytes(int64(len(text)))
			b.ReportAllocs()
			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				if _, err := codec.Decode(text); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}

func BenchmarkRepairUTF8(b *testing.B) {
	input := []byte(strings.Repeat("ok\xff名", 256))

	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		_ = keepName(repairUTF8(input))
	}
}
