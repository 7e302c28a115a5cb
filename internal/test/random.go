package test

import (
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/polkiloo/digimarket/internal/domain/model"
)

const asciiLetters = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

var (
	rngMu sync.Mutex
	rng   = rand.New(rand.NewSource(time.Now().UnixNano()))
)

// RandomASCIIString returns a pseudo-random ASCII string within the provided bounds.
// When maxLen equals minLen the resulting string always has that exact length.
func RandomASCIIString(minLen, maxLen int) string {
	if minLen <= 0 {
		minLen = 1
	}
	if maxLen < minLen {
		maxLen = minLen
	}
	length := minLen
	if maxLen > minLen {
		length += randomIntn(maxLen - minLen + 1)
	}
	buf := make([]byte, length)
	for i := range buf {
		buf[i] = asciiLetters[randomIntn(len(asciiLetters))]
	}
	return string(buf)
}

// RandomMoney returns an amount of whole cents in [min, max].
func RandomMoney(min, max model.Money) model.Money {
	if max <= min {
		return min
	}
	return min + model.Money(randomIntn(int(max-min)+1))
}

// RandomEventID returns an id shaped like the ones the payment provider sends.
func RandomEventID() string {
	return fmt.Sprintf("evt_%s", RandomASCIIString(16, 16))
}

func randomIntn(n int) int {
	rngMu.Lock()
	defer rngMu.Unlock()
	return rng.Intn(n)
}
