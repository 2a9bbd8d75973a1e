package utils

import (
	"context"
	"net"
	"strings"
	"time"
)

// rdnsTimeout bounds the PTR lookup so a slow resolver cannot stall a
// submission.
const rdnsTimeout = 2 * time.Second

// LookupReverseDNS resolves the PTR name for ip. Failure to resolve is not an
// error; callers store nil and continue.
func LookupReverseDNS(ctx context.Context, ip string) *string {
	ctx, cancel := context.WithTimeout(ctx, rdnsTimeout)
	defer cancel()

	names, err := net.DefaultResolver.LookupAddr(ctx, ip)
	if err != nil || len(names) == 0 {
		return nil
	}
	name := strings.TrimSuffix(names[0], ".")
	return &name
}
