// Package tls builds crypto/tls server configurations for the daemon
// API, with optional self-signed certificate generation for local and
// development deployments.
package tls

import (
	"crypto/tls"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

const (
	certFileName = "tls.crt"
	keyFileName  = "tls.key"
)

// Options describes the TLS material for the API listener. Either
// CertFile/KeyFile point at existing PEM files, or Dir names a
// directory that holds (or will receive, with AutoGenerate) a
// tls.crt/tls.key pair.
type Options struct {
	CertFile     string
	KeyFile      string
	Dir          string
	AutoGenerate bool
	CommonName   string
	DNSNames     []string
	ValidDays    int
	MinVersion   string // "1.2" or "1.3" (default 1.3)
}

// Setup resolves opts into a *tls.Config. Certificates are re-read on
// every handshake so a rotated pair takes effect without a restart.
func Setup(opts Options) (*tls.Config, error) {
	if opts.CertFile != "" && opts.KeyFile != "" {
		return newConfig(opts.CertFile, opts.KeyFile, opts.MinVersion)
	}

	if opts.Dir != "" {
		certPath := filepath.Join(opts.Dir, certFileName)
		keyPath := filepath.Join(opts.Dir, keyFileName)
		if opts.AutoGenerate && !haveCertPair(certPath, keyPath) {
			if err := generate(opts, certPath, keyPath); err != nil {
				return nil, fmt.Errorf("certificate generation failed: %w", err)
			}
		}
		return newConfig(certPath, keyPath, opts.MinVersion)
	}

	return nil, errors.New("tls enabled but no certificate configuration given")
}

func newConfig(certPath, keyPath, minVersion string) (*tls.Config, error) {
	minVer, err := parseVersion(minVersion)
	if err != nil {
		return nil, err
	}
	return &tls.Config{
		GetCertificate: reloadingCertFunc(certPath, keyPath),
		MinVersion:     minVer,
	}, nil
}

func parseVersion(v string) (uint16, error) {
	switch strings.TrimSpace(v) {
	case "", "1.3", "tls1.3":
		return tls.VersionTLS13, nil
	case "1.2", "tls1.2":
		return tls.VersionTLS12, nil
	default:
		return 0, fmt.Errorf("unsupported tls min version %q", v)
	}
}

// reloadingCertFunc loads the pair on each handshake. Reads are
// confined to the certificate's own directory.
func reloadingCertFunc(certPath, keyPath string) func(*tls.ClientHelloInfo) (*tls.Certificate, error) {
	baseDir := filepath.Dir(certPath)
	return func(*tls.ClientHelloInfo) (*tls.Certificate, error) {
		certPEM, err := safeReadFile(baseDir, certPath)
		if err != nil {
			return nil, err
		}
		keyPEM, err := safeReadFile(baseDir, keyPath)
		if err != nil {
			return nil, err
		}
		cert, err := tls.X509KeyPair(certPEM, keyPEM)
		return &cert, err
	}
}

func safeReadFile(baseDir, p string) ([]byte, error) {
	clean := filepath.Clean(p)
	if baseDir != "" {
		absBase, _ := filepath.Abs(baseDir)
		absFile, _ := filepath.Abs(clean)
		if !strings.HasPrefix(absFile, absBase+string(filepath.Separator)) && absFile != absBase {
			return nil, errors.New("file path outside of allowed directory")
		}
	}
	return os.ReadFile(clean)
}

func haveCertPair(certPath, keyPath string) bool {
	_, certErr := os.Stat(certPath)
	_, keyErr := os.Stat(keyPath)
	return certErr == nil && keyErr == nil
}

func generate(opts Options, certPath, keyPath string) error {
	if err := os.MkdirAll(filepath.Dir(certPath), 0o750); err != nil {
		return err
	}
	cn := opts.CommonName
	if cn == "" {
		cn = "localhost"
	}
	dnsNames := opts.DNSNames
	if len(dnsNames) == 0 {
		dnsNames = []string{"localhost"}
	}
	validDays := opts.ValidDays
	if validDays <= 0 {
		validDays = 365
	}
	return generateSelfSigned(certRequest{
		CommonName:  cn,
		DNSNames:    dnsNames,
		IPAddresses: []string{"127.0.0.1"},
		NotAfter:    time.Now().AddDate(0, 0, validDays),
		CertPath:    certPath,
		KeyPath:     keyPath,
	})
}
