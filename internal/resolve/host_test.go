package resolve

import (
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
)

type HostTestSuite struct {
	suite.Suite
}

func (s *HostTestSuite) TestConstruction() {
	host := NewHost()
	host2 := NewHost()
	host3 := host

	s.Equal(host.ID(), host3.ID())
	s.NotEqual(host.ID(), host2.ID())
	s.Equal(StatusNotYetResolved, host.Status())
	s.False(host.IsValid())
	s.False(host.IsEquivalent(host2))
	s.False(host.IsEquivalent(host3))
}

func (s *HostTestSuite) TestEquivalence() {
	host := NewHost()
	host2 := NewHost()

	host.name, host2.name = "name", "name"
	host.status, host2.status = StatusOK, StatusOK
	host.deadline = time.Unix(1, 0)
	host2.deadline = time.Unix(2, 0)

	s.True(host.IsEquivalent(host2))
	s.True(host2.IsEquivalent(host))

	host2.status = StatusOther
	s.False(host.IsEquivalent(host2))
	s.False(host2.IsEquivalent(host))
	host2.status = StatusOK

	host.ipv4["10.0.0.1"] = struct{}{}
	host.ipv4["10.0.0.2"] = struct{}{}
	// Insertion order must not matter.
	host2.ipv4["10.0.0.2"] = struct{}{}
	host2.ipv4["10.0.0.1"] = struct{}{}
	s.True(host.IsEquivalent(host2))
	s.True(host2.IsEquivalent(host))

	host.ipv4["10.0.0.3"] = struct{}{}
	s.False(host.IsEquivalent(host2))
	s.False(host2.IsEquivalent(host))

	host2.ipv4["10.0.0.3"] = struct{}{}
	s.True(host.IsEquivalent(host2))

	s.False(host.HasIPv6())
	s.False(host2.HasIPv6())

	host.ipv6["[::1]"] = struct{}{}
	s.False(host.IsEquivalent(host2))

	host2.ipv6["[::1]"] = struct{}{}
	s.True(host.IsEquivalent(host2))

	host.ipv6["[::2]"] = struct{}{}
	host2.ipv6["[::3]"] = struct{}{}
	s.False(host.IsEquivalent(host2))
	s.False(host2.IsEquivalent(host))
}

func (s *HostTestSuite) TestExpired() {
	host := NewHost()
	host.name = "name"
	host.status = StatusOther
	s.True(host.IsExpired())

	host.deadline = time.Now().Add(10 * time.Second)
	s.False(host.IsExpired())

	host.ipv4["10.0.0.1"] = struct{}{}
	host.status = StatusOK
	s.False(host.IsExpired())
	host.deadline = time.Time{}
	s.True(host.IsExpired())
}

func (s *HostTestSuite) TestValid() {
	host := NewHost()
	s.False(host.IsValid())

	host.name = "name"
	host.status = StatusOther
	s.False(host.IsValid())

	host.ipv4["10.0.0.1"] = struct{}{}
	host.status = StatusOK
	host.deadline = time.Time{}
	s.False(host.IsValid())

	host.deadline = time.Now().Add(10 * time.Second)
	s.True(host.IsValid())
}

func (s *HostTestSuite) TestExtendDeadline() {
	host := NewHost()
	host.name = "name"
	host.status = StatusOK
	host.deadline = time.Unix(1, 0)
	host.ipv4["10.0.0.1"] = struct{}{}
	host.ipv6["[::2]"] = struct{}{}

	host2 := ExtendDeadline(host, 10*time.Second)
	s.True(host.IsEquivalent(host2))
	s.True(host2.IsEquivalent(host))
	s.NotEqual(host.ID(), host2.ID())
	s.GreaterOrEqual(host2.Deadline().Unix(), time.Now().Unix()+9)
	s.LessOrEqual(host2.Deadline().Unix(), time.Now().Unix()+11)
}

func (s *HostTestSuite) TestAddressAccessorsSorted() {
	host := NewHost()
	host.ipv4["10.0.0.2"] = struct{}{}
	host.ipv4["10.0.0.1"] = struct{}{}
	host.ipv6["[::1]"] = struct{}{}

	s.Equal([]string{"10.0.0.1", "10.0.0.2"}, host.IPv4Addresses())
	s.Equal([]string{"[::1]"}, host.IPv6Addresses())
	s.True(host.HasIPv6())
}

func TestHostSuite(t *testing.T) {
	suite.Run(t, new(HostTestSuite))
}
