package trust

import (
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"os"
	"path/filepath"
)

// Certs names the PEM files a service expects under its cert directory
type Certs struct {
	Dir string // contains ca.pem, cert.pem, key.pem
}

func (c Certs) caPath() string   { return filepath.Join(c.Dir, "ca.pem") }
func (c Certs) certPath() string { return filepath.Join(c.Dir, "cert.pem") }
func (c Certs) keyPath() string  { return filepath.Join(c.Dir, "key.pem") }

// NewMutualTLS builds a server config that requires a client cert signed
// by the shared internal CA
func NewMutualTLS(c Certs) (*tls.Config, error) {
	cert, pool, err := c.load()
	if err != nil {
		return nil, err
	}
	return &tls.Config{
		MinVersion:   tls.VersionTLS12,
		Certificates: []tls.Certificate{cert},
		ClientCAs:    pool,
		ClientAuth:   tls.RequireAndVerifyClientCert,
	}, nil
}

// NewClientTLS builds a client config presenting this service's cert and
// trusting only the shared internal CA
func NewClientTLS(c Certs) (*tls.Config, error) {
	cert, pool, err := c.load()
	if err != nil {
		return nil, err
	}
	return &tls.Config{
		MinVersion:   tls.VersionTLS12,
		Certificates: []tls.Certificate{cert},
		RootCAs:      pool,
	}, nil
}

func (c Certs) load() (tls.Certificate, *x509.CertPool, error) {
	cert, err := tls.LoadX509KeyPair(c.certPath(), c.keyPath())
	if err != nil {
		return tls.Certificate{}, nil, fmt.Errorf("trust: load keypair: %w", err)
	}
	caPEM, err := os.ReadFile(c.caPath())
	if err != nil {
		return tls.Certificate{}, nil, fmt.Errorf("trust: read ca: %w", err)
	}
	pool := x509.NewCertPool()
	if !pool.AppendCertsFromPEM(caPEM) {
		return tls.Certificate{}, nil, fmt.Errorf("trust: ca pem contained no certificates")
	}
	return cert, pool, nil
}
