package core

import (
	"bytes"
	"fmt"
	"io"
	"strings"
	"testing"
)

// ============================================================================
// Decode Benchmarks
// ============================================================================

// sampleCSV builds a header plus n rows of realistic values.
func sampleCSV(n int) []byte {
	var buf bytes.Buffer
	buf.WriteString("ID,Name,Email,Age,City\n")
	for i := 0; i < n; i++ {
		fmt.Fprintf(&buf, "%d,User %d,user%d@example.com,%d,City %d\n", i+1, i, i, 20+i%50, i%100)
	}
	return buf.Bytes()
}

// BenchmarkDecode benchmarks the full decode of a 10k row object.
// This is the hot path of every Data Endpoint call.
func BenchmarkDecode(b *testing.B) {
	data := sampleCSV(10_000)
	b.SetBytes(int64(len(data)))

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := Decode(bytes.NewReader(data)); err != nil {
			b.Fatal(err)
		}
	}
}

// BenchmarkDecode_Quoted benchmarks rows with quoted fields.
func BenchmarkDecode_Quoted(b *testing.B) {
	var buf bytes.Buffer
	buf.WriteString("ID,Name,Email,Age,City\n")
	for i := 0; i < 10_000; i++ {
		fmt.Fprintf(&buf, "%d,\"Smith, John %d\",\"j%d@example.com\",%d,\"New\nYork\"\n", i, i, i, i%90)
	}
	data := buf.Bytes()
	b.SetBytes(int64(len(data)))

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := Decode(bytes.NewReader(data)); err != nil {
			b.Fatal(err)
		}
	}
}

// ============================================================================
// Streaming Benchmarks
// ============================================================================

// BenchmarkCleanReader benchmarks UTF-8 cleanup on mostly-ASCII input.
func BenchmarkCleanReader(b *testing.B) {
	data := strings.Repeat("José,Zoë,naïve,\xff,plain ascii text\n", 2_000)
	b.SetBytes(int64(len(data)))

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := io.Copy(io.Discard, newCleanReader(strings.NewReader(data))); err != nil {
			b.Fatal(err)
		}
	}
}

// ============================================================================
// Encode Benchmarks
// ============================================================================

// BenchmarkEncode benchmarks CSV export of 10k records.
func BenchmarkEncode(b *testing.B) {
	records, err := Decode(bytes.NewReader(sampleCSV(10_000)))
	if err != nil {
		b.Fatal(err)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if err := Encode(io.Discard, records); err != nil {
			b.Fatal(err)
		}
	}
}
