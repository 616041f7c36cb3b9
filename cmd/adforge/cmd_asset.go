package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"adforge/internal/campaign"
)

// assetCmd is the parent command for asset registry operations
var assetCmd = &cobra.Command{
	Use:   "asset",
	Short: "Manage brand and inspiration asset records",
	Long: `Registers files in the asset store so campaigns can reference them as
brand identity or inspiration inputs.

Examples:
  adforge asset add ./brand/logo.png --caption "Primary logo on white"
  adforge asset add ./inspo/shoot-01.jpg --id shoot-01`,
}

// assetAddCmd registers one file as an asset record
var assetAddCmd = &cobra.Command{
	Use:   "add [file]",
	Short: "Register a file as an asset record",
	Args:  cobra.ExactArgs(1),
	RunE:  runAssetAdd,
}

func init() {
	assetAddCmd.Flags().String("id", "", "Asset id (default: generated UUID)")
	assetAddCmd.Flags().String("caption", "", "Caption describing the asset")

	assetCmd.AddCommand(assetAddCmd)
}

func runAssetAdd(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	st, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	path := args[0]
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("cannot read asset file: %w", err)
	}
	if info.IsDir() {
		return fmt.Errorf("%s is a directory; register files individually", path)
	}

	id, _ := cmd.Flags().GetString("id")
	if id == "" {
		id = uuid.NewString()
	}
	caption, _ := cmd.Flags().GetString("caption")

	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}

	rec := &campaign.AssetRecord{
		ID:       id,
		FileName: filepath.Base(path),
		FilePath: abs,
		FileType: "image",
		MimeType: mimeTypeFor(path),
		FileSize: info.Size(),
		Caption:  caption,
	}
	if err := st.CreateAsset(cmd.Context(), rec); err != nil {
		return err
	}

	fmt.Println(passStyle.Render("Asset registered"))
	fmt.Printf("%s %s\n", labelStyle.Render("ID:"), rec.ID)
	fmt.Printf("%s %s\n", labelStyle.Render("File:"), rec.FileName)
	return nil
}

// mimeTypeFor maps common image extensions; the registry is image-centric.
func mimeTypeFor(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".png":
		return "image/png"
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".webp":
		return "image/webp"
	case ".gif":
		return "image/gif"
	default:
		return "application/octet-stream"
	}
}
