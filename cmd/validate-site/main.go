package main

import (
	"fmt"
	"os"

	"github.com/zendhq/zend-site/internal/config"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Println("No files to check.")
		os.Exit(0)
	}

	failed := false
	for _, path := range os.Args[1:] {
		data, err := os.ReadFile(path)
		if err != nil {
			fmt.Printf("❌ Failed to read %s: %v\n", path, err)
			failed = true
			continue
		}

		site, err := config.ParseSite(data)
		if err != nil {
			fmt.Printf("❌ %s: %v\n", path, err)
			failed = true
			continue
		}
		fmt.Printf("✅ %s is valid (%s, %d features, %d chart colors)\n", path, site.Name, len(site.Features), len(site.ChartColors))
	}

	if failed {
		os.Exit(1)
	}
}
