package dist

import (
	"net"
	"strconv"

	"github.com/pkg/errors"
)

// Node identifies one process in a training cluster.
type Node struct {
	Host string
	Port int
}

// Addr renders the node as a dialable host:port.
func (n Node) Addr() string {
	return net.JoinHostPort(n.Host, strconv.Itoa(n.Port))
}

func (n Node) String() string { return n.Addr() }

// ParseNode builds a Node from a host:port string.
func ParseNode(s string) (Node, error) {
	host, portStr, err := net.SplitHostPort(s)
	if err != nil {
		return Node{}, errors.Wrapf(err, "parsing node address %q", s)
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return Node{}, errors.Wrapf(err, "parsing node port %q", portStr)
	}
	return Node{Host: host, Port: port}, nil
}
