// Copyright 2026 The HotPreview Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/draw"
	"image/png"

	"github.com/zeebo/blake3"

	"github.com/hotpreview/hotpreview/lib/registry"
)

const (
	placeholderWidth  = 320
	placeholderHeight = 200
	borderWidth       = 8
)

// placeholderRenderer draws a framed solid rectangle whose colors are
// derived from the component and preview names, so each preview has a
// stable, distinct image.
type placeholderRenderer struct{}

func (placeholderRenderer) Render(ctx context.Context, component *registry.UIComponent, preview registry.Preview) ([]byte, error) {
	digest := blake3.Sum256([]byte(component.Name() + "\x00" + preview.Name))
	fill := color.RGBA{R: digest[0], G: digest[1], B: digest[2], A: 0xff}
	frame := color.RGBA{R: digest[3], G: digest[4], B: digest[5], A: 0xff}
	if component.Kind() == registry.KindPage {
		frame = color.RGBA{A: 0xff}
	}

	canvas := image.NewRGBA(image.Rect(0, 0, placeholderWidth, placeholderHeight))
	draw.Draw(canvas, canvas.Bounds(), &image.Uniform{C: frame}, image.Point{}, draw.Src)
	inner := canvas.Bounds().Inset(borderWidth)
	draw.Draw(canvas, inner, &image.Uniform{C: fill}, image.Point{}, draw.Src)

	var buffer bytes.Buffer
	if err := png.Encode(&buffer, canvas); err != nil {
		return nil, err
	}
	return buffer.Bytes(), nil
}
