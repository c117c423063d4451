package application

import "time"

// Clock interface supaya report timestamp dan window cutoff gampang ditest
type Clock interface {
	Now() time.Time
}

// SystemClock implementasi default untuk produksi, pakai time.Now()
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }
