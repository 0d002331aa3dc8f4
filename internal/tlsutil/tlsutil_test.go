package tlsutil

import (
	"crypto/tls"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultTLSConfig(t *testing.T) {
	cfg := DefaultTLSConfig()
	assert.Equal(t, uint16(tls.VersionTLS12), cfg.MinVersion)
	require.NotEmpty(t, cfg.CipherSuites)

	aead := map[uint16]bool{
		tls.TLS_ECDHE_ECDSA_WITH_AES_256_GCM_SHA384:       true,
		tls.TLS_ECDHE_RSA_WITH_AES_256_GCM_SHA384:         true,
		tls.TLS_ECDHE_ECDSA_WITH_AES_128_GCM_SHA256:       true,
		tls.TLS_ECDHE_RSA_WITH_AES_128_GCM_SHA256:         true,
		tls.TLS_ECDHE_ECDSA_WITH_CHACHA20_POLY1305_SHA256: true,
		tls.TLS_ECDHE_RSA_WITH_CHACHA20_POLY1305_SHA256:   true,
	}
	for _, cs := range cfg.CipherSuites {
		assert.True(t, aead[cs], "unexpected non-AEAD cipher suite: %s", tls.CipherSuiteName(cs))
	}
}

func TestProviderTransport(t *testing.T) {
	tr := ProviderTransport(ClientOptions{})
	require.NotNil(t, tr.TLSClientConfig)
	assert.Equal(t, uint16(tls.VersionTLS12), tr.TLSClientConfig.MinVersion)
	assert.False(t, tr.TLSClientConfig.InsecureSkipVerify)
	assert.True(t, tr.ForceAttemptHTTP2)
	assert.Equal(t, 10, tr.MaxIdleConnsPerHost)
	assert.NotNil(t, tr.Proxy)

	tr = ProviderTransport(ClientOptions{InsecureSkipVerify: true, MaxIdleConnsPerHost: 4})
	assert.True(t, tr.TLSClientConfig.InsecureSkipVerify)
	assert.Equal(t, 4, tr.MaxIdleConnsPerHost)
}

func TestProviderHTTPClient(t *testing.T) {
	client := ProviderHTTPClient(ClientOptions{})
	assert.Zero(t, client.Timeout)
	assert.NotNil(t, client.Transport)
}

func TestProviderHTTPClient_SelfSignedGateway(t *testing.T) {
	srv := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	t.Cleanup(srv.Close)

	// 默认校验证书，自签名网关被拒绝
	_, err := ProviderHTTPClient(ClientOptions{}).Get(srv.URL)
	require.Error(t, err)

	resp, err := ProviderHTTPClient(ClientOptions{InsecureSkipVerify: true}).Get(srv.URL)
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
}
