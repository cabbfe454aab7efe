package main

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/nixlim/pantry-alerts/internal/config"
	"github.com/nixlim/pantry-alerts/internal/inventory"
)

// RunInit writes an example inventory file if none exists and prints where
// the config and inventory live. It returns the process exit code.
func RunInit(cfg config.Config, stdout, stderr io.Writer) int {
	path := config.ExpandHome(cfg.Inventory.Path)
	src := inventory.NewFileSource(path, nil)

	if _, err := os.Stat(path); err == nil {
		fmt.Fprintf(stdout, "Inventory already exists at %s. No changes made.\n", path)
		return 0
	}

	today := time.Now()
	items := []inventory.Item{
		{ItemID: "example-milk", Name: "Milk", Category: "Dairy", ExpirationDate: today.AddDate(0, 0, 2).Format(inventory.DateLayout)},
		{ItemID: "example-bread", Name: "Bread", Category: "Bakery", ExpirationDate: today.AddDate(0, 0, 5).Format(inventory.DateLayout)},
		{ItemID: "example-rice", Name: "Rice", Category: "Pantry"},
	}
	if err := src.Save(items); err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}

	fmt.Fprintf(stdout, "Created %s with %d example items.\n", path, len(items))
	fmt.Fprintf(stdout, "Config file (optional): %s\n", config.DefaultPath())
	return 0
}
