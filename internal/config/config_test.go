package config_test

import (
	"io"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/cachefs/nameres/internal/config"
)

type ConfigTestSuite struct {
	suite.Suite
	fs       mockFS
	provider config.Provider
}

type mockFS struct {
	files map[string]string
}

func (m mockFS) Stat(path string) (os.FileInfo, error) {
	if _, ok := m.files[path]; !ok {
		return nil, os.ErrNotExist
	}
	return nil, nil
}

func (m mockFS) MkdirAll(_ string, _ os.FileMode) error {
	return nil
}

func (m mockFS) Open(path string) (*os.File, error) {
	content, ok := m.files[path]
	if !ok {
		return nil, os.ErrNotExist
	}
	tmp, err := os.CreateTemp("", "mock-*")
	if err != nil {
		return nil, err
	}
	if _, err := tmp.WriteString(content); err != nil {
		tmp.Close()
		return nil, err
	}
	if _, err := tmp.Seek(0, io.SeekStart); err != nil {
		tmp.Close()
		return nil, err
	}
	return tmp, nil
}

func (m mockFS) WriteFile(path string, content []byte, _ os.FileMode) error {
	m.files[path] = string(content)
	return nil
}

func (s *ConfigTestSuite) SetupTest() {
	s.fs = mockFS{
		files: make(map[string]string),
	}
	s.provider = config.NewWithPath(s.fs, "test/config.yaml")
}

func (s *ConfigTestSuite) TestLoadDefaultWhenNoFile() {
	cfg, err := s.provider.Load()

	s.Require().NoError(err)
	s.Equal(config.ModeDNS, cfg.Resolver.Mode)
	s.Equal(config.DefaultTimeout, cfg.Resolver.Timeout)
	s.Equal(uint(config.DefaultRetries), cfg.Resolver.Retries)
	s.False(cfg.Resolver.IPv4Only)
}

func (s *ConfigTestSuite) TestLoadValidConfig() {
	s.fs.files["test/config.yaml"] = `
resolver:
  mode: hostfile
  hosts_file: /custom/hosts
  search_domains:
    - corp.example.org
  timeout: 10s
  retries: 3
  ipv4_only: true
`
	cfg, err := s.provider.Load()

	s.Require().NoError(err)
	s.Equal(config.ModeHostfile, cfg.Resolver.Mode)
	s.Equal("/custom/hosts", cfg.Resolver.HostsFile)
	s.Equal([]string{"corp.example.org"}, cfg.Resolver.SearchDomains)
	s.Equal(10*time.Second, cfg.Resolver.Timeout)
	s.Equal(uint(3), cfg.Resolver.Retries)
	s.True(cfg.Resolver.IPv4Only)
}

func (s *ConfigTestSuite) TestPartialConfigKeepsDefaults() {
	s.fs.files["test/config.yaml"] = `
resolver:
  nameservers:
    - 1.1.1.1:53
`
	cfg, err := s.provider.Load()

	s.Require().NoError(err)
	s.Equal(config.ModeDNS, cfg.Resolver.Mode)
	s.Equal([]string{"1.1.1.1:53"}, cfg.Resolver.Nameservers)
	s.Equal(config.DefaultTimeout, cfg.Resolver.Timeout)
}

func (s *ConfigTestSuite) TestValidation() {
	testCases := []struct {
		name        string
		config      config.Config
		expectedErr string
	}{
		{
			name: "unknown mode",
			config: config.Config{
				Resolver: config.ResolverConfig{Mode: "mdns", Timeout: time.Second},
			},
			expectedErr: "resolver mode",
		},
		{
			name: "zero timeout",
			config: config.Config{
				Resolver: config.ResolverConfig{Mode: config.ModeDNS},
			},
			expectedErr: "timeout must be positive",
		},
		{
			name: "valid dns mode",
			config: config.Config{
				Resolver: config.ResolverConfig{Mode: config.ModeDNS, Timeout: time.Second},
			},
		},
		{
			name: "valid hostfile mode",
			config: config.Config{
				Resolver: config.ResolverConfig{Mode: config.ModeHostfile, Timeout: time.Second},
			},
		},
	}

	for _, tc := range testCases {
		s.Run(tc.name, func() {
			err := tc.config.Validate()
			if tc.expectedErr != "" {
				s.Require().Error(err)
				s.Contains(err.Error(), tc.expectedErr)
				return
			}
			s.NoError(err)
		})
	}
}

func (s *ConfigTestSuite) TestSaveThenLoad() {
	s.Require().NoError(s.provider.Save(config.Default()))
	s.Contains(s.fs.files, "test/config.yaml")

	cfg, err := s.provider.Load()
	s.Require().NoError(err)
	s.Equal(config.ModeDNS, cfg.Resolver.Mode)
	s.Equal(config.DefaultTimeout, cfg.Resolver.Timeout)
	s.Equal(uint(config.DefaultRetries), cfg.Resolver.Retries)
	s.Empty(cfg.Resolver.Nameservers)
}

func (s *ConfigTestSuite) TestSaveRejectsInvalid() {
	err := s.provider.Save(&config.Config{})
	s.Require().Error(err)
	s.ErrorIs(err, config.ErrInvalidConfig)
	s.NotContains(s.fs.files, "test/config.yaml")
}

func (s *ConfigTestSuite) TestInvalidConfigRejected() {
	s.fs.files["test/config.yaml"] = `
resolver:
  mode: carrier-pigeon
`
	_, err := s.provider.Load()
	s.Require().Error(err)
	s.ErrorIs(err, config.ErrInvalidConfig)
}

func TestConfigSuite(t *testing.T) {
	suite.Run(t, new(ConfigTestSuite))
}
