// Package probe checks that the DNS servers of a task answer queries.
package probe

import (
	"context"
	"net"
	"sync"
	"time"

	"github.com/miekg/dns"
)

// Result is the outcome of one query against one server.
type Result struct {
	Server  string   `json:"server" yaml:"server"`
	RTT     string   `json:"rtt" yaml:"rtt"`
	Rcode   string   `json:"rcode,omitempty" yaml:"rcode,omitempty"`
	Answers []string `json:"answers,omitempty" yaml:"answers,omitempty"`
	Error   string   `json:"error,omitempty" yaml:"error,omitempty"`
}

// OK reports whether the server answered with NOERROR.
func (r Result) OK() bool {
	return r.Error == "" && r.Rcode == dns.RcodeToString[dns.RcodeSuccess]
}

// Prober sends A queries over UDP.
type Prober struct {
	Name    string
	Timeout time.Duration
}

// New creates a prober that resolves name.
func New(name string, timeout time.Duration) *Prober {
	return &Prober{Name: name, Timeout: timeout}
}

// Probe queries every server concurrently and returns results in the order
// of servers.
func (p *Prober) Probe(ctx context.Context, servers []string) []Result {
	results := make([]Result, len(servers))

	var wg sync.WaitGroup
	for i, server := range servers {
		wg.Add(1)
		go func(i int, server string) {
			defer wg.Done()
			results[i] = p.query(ctx, server)
		}(i, server)
	}
	wg.Wait()
	return results
}

func (p *Prober) query(ctx context.Context, server string) Result {
	res := Result{Server: server}

	msg := new(dns.Msg)
	msg.SetQuestion(dns.Fqdn(p.Name), dns.TypeA)

	client := &dns.Client{Net: "udp", Timeout: p.Timeout}
	reply, rtt, err := client.ExchangeContext(ctx, msg, address(server))
	res.RTT = rtt.Round(time.Microsecond).String()
	if err != nil {
		res.Error = err.Error()
		return res
	}

	res.Rcode = dns.RcodeToString[reply.Rcode]
	for _, rr := range reply.Answer {
		if a, ok := rr.(*dns.A); ok {
			res.Answers = append(res.Answers, a.A.String())
		}
	}
	return res
}

// address adds the default port unless server already carries one.
func address(server string) string {
	if _, _, err := net.SplitHostPort(server); err == nil {
		return server
	}
	return net.JoinHostPort(server, "53")
}
