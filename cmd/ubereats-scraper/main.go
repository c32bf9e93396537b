package main

import (
	"context"
	"ubereats-scraper/cmd/ubereats-scraper/cmd"
	"ubereats-scraper/lib/serviceutil"
)

func main() {
	ctx, cancel := serviceutil.SignalContext(context.Background())
	defer cancel()

	cmd.ExecuteContext(ctx)
}
