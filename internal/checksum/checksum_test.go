package checksum

import "testing"

func TestVerifyRoundTrip(t *testing.T) {
	data := []byte("vocabulary tree index bytes")
	sum := Sum(data)
	if !Verify(data, sum) {
		t.Error("Verify rejected a digest computed from the same data")
	}
}

func TestVerifyDetectsTruncation(t *testing.T) {
	data := []byte("vocabulary tree index bytes")
	sum := Sum(data)
	truncated := data[:len(data)-1]
	if Verify(truncated, sum) {
		t.Error("Verify accepted a truncated payload")
	}
}
