package proxy

import (
	"context"
	"crypto/tls"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
	"resty.dev/v3"
)

const maxConcurrentChecks = 50

// ProxySupplier hands out outbound proxies for the catalog client in round-robin order
type ProxySupplier interface {
	Get() string
	Len() int
}

// Checker reports whether a proxy can reach the target URL.
type Checker func(ctx context.Context, proxyURL, targetURL string) bool

type proxySupplier struct {
	proxies []string
	current int
	mutex   sync.Mutex
}

// NewProxySupplier keeps the proxies that pass check against targetURL, preserving
// their configured order. A nil check uses CheckProxy.
func NewProxySupplier(ctx context.Context, proxies []string, targetURL string, check Checker) ProxySupplier {
	if len(proxies) == 0 {
		return &proxySupplier{proxies: []string{}}
	}
	if check == nil {
		check = CheckProxy
	}

	log.Infof("🔄 Checking %d catalog proxies...", len(proxies))

	valid := make([]bool, len(proxies))
	semaphore := make(chan struct{}, maxConcurrentChecks)
	var wg sync.WaitGroup

	for i, proxyURL := range proxies {
		wg.Add(1)
		go func() {
			defer wg.Done()

			semaphore <- struct{}{}
			defer func() { <-semaphore }()

			valid[i] = check(ctx, proxyURL, targetURL)
			if valid[i] {
				log.Debugf("✅ Proxy %s is working", proxyURL)
			} else {
				log.Warnf("❌ Proxy %s is not working, skipping", proxyURL)
			}
		}()
	}
	wg.Wait()

	working := make([]string, 0, len(proxies))
	for i, proxyURL := range proxies {
		if valid[i] {
			working = append(working, proxyURL)
		}
	}

	log.Infof("✅ Proxy supplier ready with %d of %d proxies", len(working), len(proxies))
	return &proxySupplier{proxies: working}
}

// Get returns the next proxy URL, or "" when none are configured
func (p *proxySupplier) Get() string {
	p.mutex.Lock()
	defer p.mutex.Unlock()

	if len(p.proxies) == 0 {
		return ""
	}

	proxy := p.proxies[p.current]
	p.current = (p.current + 1) % len(p.proxies)
	return proxy
}

func (p *proxySupplier) Len() int {
	p.mutex.Lock()
	defer p.mutex.Unlock()
	return len(p.proxies)
}

// CheckProxy issues a single GET through the proxy and accepts any non-error status.
func CheckProxy(ctx context.Context, proxyURL, targetURL string) bool {
	client := resty.New().
		SetTimeout(5 * time.Second).
		SetRetryCount(0).
		SetProxy(proxyURL).
		SetTLSClientConfig(&tls.Config{
			InsecureSkipVerify: true,
		})

	resp, err := client.R().
		SetContext(ctx).
		Get(targetURL)
	if err != nil {
		log.Debugf("Proxy check failed for %s: %v", proxyURL, err)
		return false
	}

	return !resp.IsError()
}
