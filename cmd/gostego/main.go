// GoStego — hide data in images.
//
// Usage:
//
//	gostego embed -i <image> -o <out.png> (-s <file> | -t <text>) [-p <password>] [--compress]
//	gostego extract -i <image> [-p <password>] [-o <file>]
//	gostego capacity -i <image>
//	gostego cover -o <file> [options]
//	gostego serve [--config gostego.yaml] [--port 8080]
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/xob0t/GoStego/clients/server"
	"github.com/xob0t/GoStego/pkg/cover"
	"github.com/xob0t/GoStego/pkg/imageio"
	"github.com/xob0t/GoStego/pkg/stego"
)

// stdout is swapped in tests.
var stdout io.Writer = os.Stdout

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	var err error
	switch os.Args[1] {
	case "embed":
		err = runEmbed(os.Args[2:])
	case "extract":
		err = runExtract(os.Args[2:])
	case "capacity":
		err = runCapacity(os.Args[2:])
	case "cover":
		err = runCover(os.Args[2:])
	case "serve":
		err = server.RunServe(os.Args[2:])
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
	if err != nil {
		fatal(err)
	}
}

func runEmbed(args []string) error {
	fs := flag.NewFlagSet("embed", flag.ContinueOnError)

	var (
		input, output, secretPath, text, password string
		compress                                  bool
	)
	fs.StringVar(&input, "i", "", "Carrier image (PNG, JPEG, GIF, BMP, TIFF, WebP)")
	fs.StringVar(&output, "o", "", "Output image (.png or .bmp)")
	fs.StringVar(&secretPath, "s", "", "File to hide")
	fs.StringVar(&text, "t", "", "Text to hide")
	fs.StringVar(&password, "p", "", "Password (optional)")
	fs.BoolVar(&compress, "compress", false, "zstd-compress the payload when smaller")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if input == "" || output == "" {
		return fmt.Errorf("-i and -o are required")
	}
	if (secretPath == "") == (text == "") {
		return fmt.Errorf("exactly one of -s or -t is required")
	}

	format, err := imageio.FormatForPath(output)
	if err != nil {
		return err
	}

	secret := []byte(text)
	if secretPath != "" {
		if secret, err = os.ReadFile(secretPath); err != nil {
			return fmt.Errorf("read secret: %w", err)
		}
	}

	c, err := loadCarrier(input)
	if err != nil {
		return err
	}

	out, err := stego.EmbedWithOptions(c, secret, password, stego.Options{Compress: compress})
	if err != nil {
		return err
	}
	if format == "bmp" && out.Channels != 3 {
		return fmt.Errorf("%s has transparency, BMP output cannot keep it: use .png", input)
	}

	f, err := os.Create(output)
	if err != nil {
		return fmt.Errorf("create %s: %w", output, err)
	}
	defer f.Close()
	if err := imageio.Encode(f, out, format); err != nil {
		return err
	}

	fmt.Fprintf(stdout, "Embedded %d bytes → %s\n", len(secret), output)
	return f.Sync()
}

func runExtract(args []string) error {
	fs := flag.NewFlagSet("extract", flag.ContinueOnError)
	var input, output, password string
	fs.StringVar(&input, "i", "", "Image with hidden data")
	fs.StringVar(&output, "o", "", "Write the secret here instead of stdout")
	fs.StringVar(&password, "p", "", "Password (optional)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if input == "" {
		return fmt.Errorf("-i is required")
	}

	c, err := loadCarrier(input)
	if err != nil {
		return err
	}

	secret, err := stego.Extract(c, password)
	if errors.Is(err, stego.ErrCorruptFrame) {
		return fmt.Errorf("no hidden data found (wrong password or damaged image)")
	}
	if err != nil {
		return err
	}

	if output == "" {
		_, err = stdout.Write(secret)
		return err
	}
	if err := os.WriteFile(output, secret, 0o600); err != nil {
		return fmt.Errorf("write secret: %w", err)
	}
	fmt.Fprintf(stdout, "Extracted %d bytes → %s\n", len(secret), output)
	return nil
}

func runCapacity(args []string) error {
	fs := flag.NewFlagSet("capacity", flag.ContinueOnError)
	var input string
	fs.StringVar(&input, "i", "", "Carrier image")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if input == "" {
		return fmt.Errorf("-i is required")
	}

	c, err := loadCarrier(input)
	if err != nil {
		return err
	}
	fmt.Fprintf(stdout, "%dx%d, %d bits, up to %d bytes\n",
		c.Width, c.Height, stego.CapacityBits(c), stego.MaxPayloadBytes(c))
	return nil
}

func runCover(args []string) error {
	fs := flag.NewFlagSet("cover", flag.ContinueOnError)

	var (
		output string
		cfg    cover.Config
	)
	fs.StringVar(&output, "o", "", "Output file path (.png or .bmp)")
	fs.StringVar(&output, "output", "", "Output file path (.png or .bmp)")
	fs.IntVar(&cfg.Width, "w", 640, "Width in pixels")
	fs.IntVar(&cfg.Width, "width", 640, "Width in pixels")
	fs.IntVar(&cfg.Height, "h", 480, "Height in pixels")
	fs.IntVar(&cfg.Height, "height", 480, "Height in pixels")
	fs.StringVar(&cfg.Color, "color", "random", "Background color: hex or 'random'")
	fs.IntVar(&cfg.Noise, "noise", 0, "Per-channel noise amplitude, 0..127")
	fs.Uint64Var(&cfg.Seed, "seed", 0, "Noise seed (0: random)")
	fs.StringVar(&cfg.Caption, "caption", "", "Caption text")
	fs.StringVar(&cfg.FontPath, "font", "", "TTF font for the caption")
	fs.Float64Var(&cfg.FontSize, "font-size", 24, "Caption size in points")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if output == "" {
		return fmt.Errorf("output file is required (-o)")
	}

	if err := cover.Generate(output, cfg); err != nil {
		return err
	}
	fmt.Fprintf(stdout, "Done: %s\n", output)
	return nil
}

func loadCarrier(path string) (*stego.Carrier, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read image: %w", err)
	}
	c, format, err := imageio.Decode(data, 0)
	if err != nil {
		return nil, err
	}
	if !imageio.Lossless(format) {
		fmt.Fprintf(os.Stderr, "Warning: %s is a lossy or palette format; output is re-encoded losslessly\n", format)
	}
	return c, nil
}

func fatal(err error) {
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	os.Exit(1)
}

func printUsage() {
	fmt.Print(`GoStego — hide data in images (LSB steganography)

USAGE:
    gostego embed    -i <image> -o <out.png|out.bmp> (-s <file> | -t <text>) [options]
    gostego extract  -i <image> [-p <password>] [-o <file>]
    gostego capacity -i <image>
    gostego cover    -o <file.png|file.bmp> [options]
    gostego serve    [--config <yaml>] [--port 8080]

EMBED:
    -p <password>          Scramble hidden bits with a password
    --compress             zstd-compress the payload when it helps

COVER:
    -w, --width <px>       Width in pixels (default: 640)
    -h, --height <px>      Height in pixels (default: 480)
    --color <hex>          Background color or 'random' (default: random)
    --noise <n>            Per-channel noise amplitude (default: 0)
    --seed <n>             Noise seed (default: random)
    --caption <text>       Caption drawn on the cover
    --font <ttf>           Caption font (default: Go Regular)

SERVER:
    gostego serve [--config gostego.yaml] [--port 8080]
        POST /encode   image, secret, [password], [compress]  → image/png
        POST /decode   image, [password]                      → secret bytes
        POST /capacity image                                  → JSON

EXAMPLES:
    gostego cover -o cover.png --noise 6 --caption "Holiday 2024"
    gostego embed -i cover.png -o secret.png -t "meet at noon" -p swordfish
    gostego extract -i secret.png -p swordfish
    gostego capacity -i photo.jpg
`)
}
