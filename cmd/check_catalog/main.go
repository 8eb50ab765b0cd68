// check_catalog 校验游览目录，并报告资源目录下缺失的引用文件
package main

import (
	"flag"
	"fmt"
	"io/fs"
	"os"

	"github.com/decker502/vtour/pkg/config"
)

func main() {
	catalogPath := flag.String("catalog", "data/catalog.yaml", "catalog file")
	assetBase := flag.String("assets", ".", "directory catalog paths are relative to")
	soundDir := flag.String("sound", "assets/sound", "sound directory, relative to -assets")
	flag.Parse()

	catalog, err := config.LoadCatalog(*catalogPath)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}

	missing := checkAssets(catalog, os.DirFS(*assetBase), *soundDir)
	fmt.Printf("Catalog %s: %d locations, %d popups\n", *catalogPath, len(catalog.Locations), len(catalog.Popups))
	if len(missing) == 0 {
		fmt.Println("All referenced assets present")
		return
	}
	for _, p := range missing {
		fmt.Printf("  missing: %s\n", p)
	}
	fmt.Printf("%d missing assets\n", len(missing))
	os.Exit(1)
}

// checkAssets 返回在 assets 中找不到的引用路径
func checkAssets(catalog *config.Catalog, assets fs.FS, soundDir string) []string {
	var missing []string
	for _, p := range catalog.AssetPaths(soundDir) {
		if _, err := fs.Stat(assets, p); err != nil {
			missing = append(missing, p)
		}
	}
	return missing
}
