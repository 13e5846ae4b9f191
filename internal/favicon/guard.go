package favicon

import (
	"errors"
	"fmt"
	"net"
	"syscall"

	"github.com/MrSnakeDoc/adlinkton/internal/utils"
)

var errPrivateAddress = errors.New("refusing to fetch from private address")

// privateNets are never dialed unless Options.AllowPrivate is set.
var privateNets = utils.NewIPMatcher([]string{
	"0.0.0.0/8",
	"127.0.0.0/8",
	"10.0.0.0/8",
	"172.16.0.0/12",
	"192.168.0.0/16",
	"169.254.0.0/16",
	"100.64.0.0/10",
	"::1/128",
	"fe80::/10",
	"fc00::/7",
})

// denyPrivate is a net.Dialer Control hook. It runs after DNS resolution so
// names pointing at private addresses are refused too.
func denyPrivate(_, address string, _ syscall.RawConn) error {
	host, _, err := net.SplitHostPort(address)
	if err != nil {
		return err
	}
	if privateNets.Match(host) {
		return fmt.Errorf("%w: %s", errPrivateAddress, host)
	}
	return nil
}
