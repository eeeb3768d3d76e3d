// Package ratelimit — IP bazlı sliding window rate limiting.
//
// Yazma endpoint'lerini (sunucu/rol/kanal mutasyonları) kaba kuvvet ve
// flood'a karşı korur. Her IP için pencere başına istek sayısı tutulur;
// limit aşılınca caller 429 döner.
//
// In-memory tutulur: tek instance deploy'da harici store gerekmez ve
// her istekte DB'ye yazmak gereksiz contention yaratır. Süresi dolmuş
// bucket'lar arka plan goroutine'i ile temizlenir.
//
// pkg/ratelimit hiçbir proje içi pakete bağımlı değildir (leaf dependency)
// — handlers ↔ middleware arasında import cycle oluşmaz.
package ratelimit

import (
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"
)

// bucket, bir IP için istek sayacı ve pencere başlangıcı tutar.
type bucket struct {
	count       int
	windowStart time.Time
}

// Limiter, IP bazlı sliding window rate limiter.
//
//	limiter := ratelimit.New(60, time.Minute)
//	if !limiter.Allow(ip) { // 429 + Retry-After }
type Limiter struct {
	mu          sync.RWMutex
	buckets     map[string]*bucket
	maxRequests int
	window      time.Duration
	stopCleanup chan struct{}
}

// New, yeni bir Limiter oluşturur ve cleanup goroutine'ini başlatır.
//
// maxRequests: pencere başına izin verilen istek sayısı.
// window: pencere süresi (örn: time.Minute → dakikada maxRequests istek).
func New(maxRequests int, window time.Duration) *Limiter {
	rl := &Limiter{
		buckets:     make(map[string]*bucket),
		maxRequests: maxRequests,
		window:      window,
		stopCleanup: make(chan struct{}),
	}

	go rl.cleanupLoop()

	return rl
}

// Allow, verilen IP'nin isteğine izin verilip verilmediğini kontrol eder.
// Her çağrı sayacı artırır; false dönerse caller 429 dönmeli.
func (rl *Limiter) Allow(ip string) bool {
	now := time.Now()

	rl.mu.Lock()
	defer rl.mu.Unlock()

	b, exists := rl.buckets[ip]
	if !exists {
		rl.buckets[ip] = &bucket{count: 1, windowStart: now}
		return true
	}

	if now.Sub(b.windowStart) > rl.window {
		// Yeni pencere — eski sayaç sıfırlanır
		b.count = 1
		b.windowStart = now
		return true
	}

	b.count++
	return b.count <= rl.maxRequests
}

// RetryAfterSeconds, limit aşıldığında kalan bekleme süresini saniye
// cinsinden döner. HTTP Retry-After header değeri olarak kullanılır.
func (rl *Limiter) RetryAfterSeconds(ip string) int {
	rl.mu.RLock()
	defer rl.mu.RUnlock()

	b, exists := rl.buckets[ip]
	if !exists {
		return 0
	}

	remaining := rl.window - time.Since(b.windowStart)
	if remaining < 0 {
		return 0
	}
	return int(remaining.Seconds()) + 1
}

// Close, cleanup goroutine'ini durdurur.
func (rl *Limiter) Close() {
	close(rl.stopCleanup)
}

func (rl *Limiter) cleanupLoop() {
	ticker := time.NewTicker(60 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			rl.cleanup()
		case <-rl.stopCleanup:
			return
		}
	}
}

func (rl *Limiter) cleanup() {
	now := time.Now()

	rl.mu.Lock()
	defer rl.mu.Unlock()

	for ip, b := range rl.buckets {
		if now.Sub(b.windowStart) > rl.window {
			delete(rl.buckets, ip)
		}
	}
}

// ExtractIP, HTTP request'ten client IP adresini çıkarır.
//
// Öncelik: X-Forwarded-For (reverse proxy, ilk IP) → X-Real-IP →
// RemoteAddr. Production'da uygulama genellikle bir proxy arkasındadır;
// RemoteAddr o durumda proxy'nin adresidir.
func ExtractIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		for i := 0; i < len(xff); i++ {
			if xff[i] == ',' {
				return xff[:i]
			}
		}
		return xff
	}

	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return xri
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// FormatRetryMessage, kalan süreyi okunabilir formata çevirir.
// Örn: 120 → "2 minute(s)", 45 → "45 second(s)"
func FormatRetryMessage(seconds int) string {
	if seconds >= 60 {
		return fmt.Sprintf("%d minute(s)", seconds/60)
	}
	return fmt.Sprintf("%d second(s)", seconds)
}
