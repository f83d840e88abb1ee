/*
DESCRIPTION
  udp.go provides a Source reading datagrams from a UDP socket, joining a
  multicast group when the address is one.

LICENSE
  Copyright (C) 2026 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package input

import (
	"net"
	"strconv"
	"time"

	"github.com/ausocean/utils/logging"
	"github.com/pkg/errors"
	"golang.org/x/net/ipv4"
)

// maxDatagram is the largest UDP payload.
const maxDatagram = 65535

// UDP is a Source reading from a UDP socket.
type UDP struct {
	source
	conn    *net.UDPConn
	group   *ipv4.PacketConn
	groupIP net.IP
	ifi     *net.Interface
	timeout time.Duration
	name    string
	buf     []byte
}

// NewUDP listens on port. If addr is a multicast group the socket binds the
// port on all addresses and joins the group on iface, which may be an
// interface name, a local address or empty for the system default. Otherwise
// the socket binds addr, which may be empty for all addresses.
func NewUDP(addr string, port uint, iface string, timeout time.Duration, log logging.Logger, options ...Option) (*UDP, error) {
	u := &UDP{
		source:  source{log: log},
		timeout: timeout,
		name:    net.JoinHostPort(addr, strconv.Itoa(int(port))),
		buf:     make([]byte, maxDatagram),
	}
	err := u.apply(options)
	if err != nil {
		return nil, err
	}

	var ip net.IP
	if addr != "" {
		a, err := net.ResolveIPAddr("ip4", addr)
		if err != nil {
			return nil, errors.Wrapf(err, "could not resolve %s", addr)
		}
		ip = a.IP
	}

	if ip == nil || !ip.IsMulticast() {
		u.conn, err = net.ListenUDP("udp4", &net.UDPAddr{IP: ip, Port: int(port)})
		if err != nil {
			return nil, errors.Wrap(err, "could not listen")
		}
		log.Info("listening", "address", u.conn.LocalAddr().String())
		return u, nil
	}

	u.ifi, err = findInterface(iface)
	if err != nil {
		return nil, err
	}
	u.conn, err = net.ListenUDP("udp4", &net.UDPAddr{Port: int(port)})
	if err != nil {
		return nil, errors.Wrap(err, "could not listen")
	}
	u.group = ipv4.NewPacketConn(u.conn)
	u.groupIP = ip
	err = u.group.JoinGroup(u.ifi, &net.UDPAddr{IP: ip})
	if err != nil {
		u.conn.Close()
		return nil, errors.Wrapf(err, "could not join group %s", ip)
	}
	log.Info("joined multicast group", "group", ip.String(), "port", port, "interface", ifaceName(u.ifi))
	return u, nil
}

// findInterface returns the interface named by s, or holding address s. An
// empty s returns nil, which lets the system choose.
func findInterface(s string) (*net.Interface, error) {
	if s == "" {
		return nil, nil
	}
	if ifi, err := net.InterfaceByName(s); err == nil {
		return ifi, nil
	}
	ip := net.ParseIP(s)
	if ip == nil {
		return nil, errors.Errorf("no interface %s", s)
	}
	ifis, err := net.Interfaces()
	if err != nil {
		return nil, errors.Wrap(err, "could not list interfaces")
	}
	for i := range ifis {
		addrs, err := ifis[i].Addrs()
		if err != nil {
			continue
		}
		for _, a := range addrs {
			if n, ok := a.(*net.IPNet); ok && n.IP.Equal(ip) {
				return &ifis[i], nil
			}
		}
	}
	return nil, errors.Errorf("no interface with address %s", s)
}

func ifaceName(ifi *net.Interface) string {
	if ifi == nil {
		return "default"
	}
	return ifi.Name
}

// Next implements Source.
func (u *UDP) Next() (Datagram, error) {
	err := u.conn.SetReadDeadline(time.Now().Add(u.timeout))
	if err != nil {
		return Datagram{}, errors.Wrap(err, "could not set read deadline")
	}
	n, _, err := u.conn.ReadFromUDP(u.buf)
	if err != nil {
		var ne net.Error
		if errors.As(err, &ne) && ne.Timeout() {
			return Datagram{}, ErrTimeout
		}
		return Datagram{}, err
	}
	d := Datagram{Time: time.Now()}
	d.Data, err = u.unwrap(u.buf[:n])
	if err != nil {
		return Datagram{}, err
	}
	return d, nil
}

// Name implements Source.
func (u *UDP) Name() string { return u.name }

// LocalAddr returns the address the socket is bound to.
func (u *UDP) LocalAddr() net.Addr { return u.conn.LocalAddr() }

// Close leaves any joined group and closes the socket.
func (u *UDP) Close() error {
	if u.group != nil {
		err := u.group.LeaveGroup(u.ifi, &net.UDPAddr{IP: u.groupIP})
		if err != nil {
			u.log.Warning("could not leave multicast group", "error", err.Error())
		}
	}
	return u.conn.Close()
}
