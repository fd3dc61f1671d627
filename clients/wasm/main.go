//go:build js && wasm

// GoStego WASM — client-side embed and extract, no upload needed.
// Compiled with: GOOS=js GOARCH=wasm go build -o gostego.wasm ./clients/wasm/
package main

import (
	"encoding/base64"
	"fmt"
	"syscall/js"

	"github.com/xob0t/GoStego/pkg/imageio"
	"github.com/xob0t/GoStego/pkg/stego"
)

func main() {
	fmt.Println("GoStego WASM loaded")

	// Register JS-callable functions.
	js.Global().Set("goEmbed", js.FuncOf(embed))
	js.Global().Set("goExtract", js.FuncOf(extract))
	js.Global().Set("goCapacity", js.FuncOf(capacity))
	js.Global().Set("goReady", js.ValueOf(true))

	// Block forever (WASM must not exit).
	select {}
}

func fail(err error) any {
	return js.ValueOf(map[string]any{"error": err.Error()})
}

func decodeArg(args []js.Value, i int) ([]byte, error) {
	if len(args) <= i {
		return nil, fmt.Errorf("missing argument %d", i)
	}
	return base64.StdEncoding.DecodeString(args[i].String())
}

func optionalString(args []js.Value, i int) string {
	if len(args) <= i || args[i].IsUndefined() || args[i].IsNull() {
		return ""
	}
	return args[i].String()
}

// goEmbed(imageB64, secretB64, password?, compress?) → {png: base64} | {error}
func embed(this js.Value, args []js.Value) any {
	imgData, err := decodeArg(args, 0)
	if err != nil {
		return fail(fmt.Errorf("image: %w", err))
	}
	secret, err := decodeArg(args, 1)
	if err != nil {
		return fail(fmt.Errorf("secret: %w", err))
	}
	opts := stego.Options{Compress: len(args) > 3 && args[3].Truthy()}

	c, _, err := imageio.Decode(imgData, 0)
	if err != nil {
		return fail(err)
	}
	out, err := stego.EmbedWithOptions(c, secret, optionalString(args, 2), opts)
	if err != nil {
		return fail(err)
	}
	data, err := imageio.EncodePNG(out)
	if err != nil {
		return fail(err)
	}
	return js.ValueOf(map[string]any{"png": base64.StdEncoding.EncodeToString(data)})
}

// goExtract(imageB64, password?) → {secret: base64} | {error}
func extract(this js.Value, args []js.Value) any {
	imgData, err := decodeArg(args, 0)
	if err != nil {
		return fail(fmt.Errorf("image: %w", err))
	}
	c, _, err := imageio.Decode(imgData, 0)
	if err != nil {
		return fail(err)
	}
	secret, err := stego.Extract(c, optionalString(args, 1))
	if err != nil {
		return fail(err)
	}
	return js.ValueOf(map[string]any{"secret": base64.StdEncoding.EncodeToString(secret)})
}

// goCapacity(imageB64) → {width, height, capacityBits, maxPayloadBytes} | {error}
func capacity(this js.Value, args []js.Value) any {
	imgData, err := decodeArg(args, 0)
	if err != nil {
		return fail(fmt.Errorf("image: %w", err))
	}
	c, _, err := imageio.Decode(imgData, 0)
	if err != nil {
		return fail(err)
	}
	return js.ValueOf(map[string]any{
		"width":           c.Width,
		"height":          c.Height,
		"capacityBits":    stego.CapacityBits(c),
		"maxPayloadBytes": stego.MaxPayloadBytes(c),
	})
}
