package middleware

import (
	"bufio"
	"fmt"
	"net/netip"
	"os"
	"strings"

	"github.com/veltalldev/photo-gallery/config"
	"github.com/veltalldev/photo-gallery/util"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

// Whitelist gates every request on the client IP. Built once at startup and
// never mutated afterwards, so concurrent reads need no locking.
type Whitelist struct {
	networks    []netip.Prefix
	alwaysAllow map[string]bool
}

// NewWhitelist builds the allow-list from the configured addresses and the
// optional whitelist file. Any malformed entry fails construction; the
// server must not start with a partial list.
func NewWhitelist(conf config.WhitelistConfig) (*Whitelist, error) {
	w := &Whitelist{alwaysAllow: make(map[string]bool)}
	for _, ip := range conf.AlwaysAllow {
		w.alwaysAllow[ip] = true
	}

	if conf.File != "" {
		entries, err := readWhitelistFile(conf.File)
		if err != nil {
			return nil, err
		}
		if err := w.add(entries); err != nil {
			return nil, err
		}
	}
	if err := w.add(conf.Addresses); err != nil {
		return nil, err
	}

	util.LogInfo("IP whitelist initialized", logrus.Fields{
		"networks": len(w.networks),
	})
	return w, nil
}

// readWhitelistFile reads one address or CIDR block per line, skipping blank
// lines and # comments
func readWhitelistFile(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load IP whitelist from %s: %w", path, err)
	}
	defer f.Close()

	var entries []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		entries = append(entries, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read IP whitelist from %s: %w", path, err)
	}
	return entries, nil
}

// add parses individual IPv4 addresses and CIDR blocks into prefixes
func (w *Whitelist) add(entries []string) error {
	for _, entry := range entries {
		var prefix netip.Prefix
		var err error
		if strings.Contains(entry, "/") {
			prefix, err = netip.ParsePrefix(entry)
		} else {
			var addr netip.Addr
			addr, err = netip.ParseAddr(entry)
			if err == nil {
				prefix = netip.PrefixFrom(addr, addr.BitLen())
			}
		}
		if err != nil || !prefix.Addr().Is4() {
			return fmt.Errorf("invalid IP address or network %q", entry)
		}
		w.networks = append(w.networks, prefix.Masked())
	}
	return nil
}

// Allowed reports whether the client IP may reach the handlers. Malformed
// input is logged and denied, never fatal.
func (w *Whitelist) Allowed(ip string) bool {
	if w.alwaysAllow[ip] {
		return true
	}

	addr, err := netip.ParseAddr(ip)
	if err != nil || !addr.Is4() {
		util.LogWarning("Invalid client IP format", logrus.Fields{"ip": ip})
		return false
	}
	for _, network := range w.networks {
		if network.Contains(addr) {
			return true
		}
	}
	return false
}

// Handler wraps the whitelist as a fiber middleware placed ahead of all
// routes; disallowed clients get a 403 and no further processing
func (w *Whitelist) Handler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		ip := c.IP()
		if !w.Allowed(ip) {
			util.LogWarning("Blocked request from non-whitelisted IP", logrus.Fields{
				"ip":   ip,
				"path": c.Path(),
			})
			return fiber.NewError(fiber.StatusForbidden, "Access denied. Your IP is not whitelisted.")
		}
		return c.Next()
	}
}
