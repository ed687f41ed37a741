// Copyright 2026 The HotPreview Authors
// SPDX-License-Identifier: Apache-2.0

package netutil

import (
	"fmt"
	"strconv"
	"strings"
)

// ParseConnectionString splits a tooling connection string into dialable
// "host:port" addresses.
//
// The format is "host:port", split on the only colon. Discovery may offer
// several candidate hosts for the same port as a comma-separated list
// ("192.168.1.4,10.0.2.2:54242"); each candidate becomes its own address,
// in the order given. IPv6 literals are not supported because the colon
// is the separator.
func ParseConnectionString(connectionString string) ([]string, error) {
	hostList, port, found := strings.Cut(strings.TrimSpace(connectionString), ":")
	if !found {
		return nil, fmt.Errorf("connection string %q: missing port", connectionString)
	}
	if strings.Contains(port, ":") {
		return nil, fmt.Errorf("connection string %q: more than one colon", connectionString)
	}
	portNumber, err := strconv.Atoi(port)
	if err != nil || portNumber <= 0 || portNumber > 65535 {
		return nil, fmt.Errorf("connection string %q: invalid port %q", connectionString, port)
	}

	var addresses []string
	for _, host := range strings.Split(hostList, ",") {
		host = strings.TrimSpace(host)
		if host == "" {
			continue
		}
		addresses = append(addresses, host+":"+port)
	}
	if len(addresses) == 0 {
		return nil, fmt.Errorf("connection string %q: missing host", connectionString)
	}
	return addresses, nil
}
