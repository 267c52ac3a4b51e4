// README: One-page PDF quote sheet with the route drawn between pickup (A) and drop-off (B).
package main

import (
	"fmt"
	"io"
	"math"
	"time"

	"github.com/phpdave11/gofpdf"

	"taxipred/internal/service"
	"taxipred/internal/types"
)

// Map frame on an A4 portrait page, in mm.
const (
	mapX = 20.0
	mapY = 95.0
	mapW = 170.0
	mapH = 170.0
)

func RenderQuotePDF(w io.Writer, req QuoteRequest, res service.PredictionResult, now time.Time) error {
	pdf := gofpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetTitle("Taxi fare quote", false)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 18)
	pdf.Cell(0, 10, "TAXI FARE QUOTE")
	pdf.Ln(12)

	pdf.SetFont("Helvetica", "", 11)
	lines := []string{
		"Issued     : " + now.Format("2006-01-02 15:04"),
		"Pickup (A) : " + req.PickupAddress,
		"Dropoff (B): " + req.DropoffAddress,
		fmt.Sprintf("Weather    : %s    Passengers: %d", req.Weather, req.PassengerCount),
		fmt.Sprintf("Distance   : %.2f km    Duration: %.1f min", res.DistanceKm, res.DurationMin),
		fmt.Sprintf("Straight   : %.2f km", types.HaversineKm(res.Pickup, res.Dropoff)),
	}
	for _, s := range lines {
		pdf.Cell(0, 7, tr(s))
		pdf.Ln(7)
	}

	pdf.Ln(3)
	pdf.SetFont("Helvetica", "B", 14)
	pdf.Cell(0, 9, fmt.Sprintf("Estimated price: %.2f", res.PredictedPrice))

	drawRoute(pdf, res)

	pdf.SetXY(mapX, mapY+mapH+4)
	pdf.SetFont("Helvetica", "I", 9)
	pdf.MultiCell(mapW, 5, "Estimate only. The final fare depends on actual traffic and route.", "", "", false)

	return pdf.Output(w)
}

func drawRoute(pdf *gofpdf.Fpdf, res service.PredictionResult) {
	pdf.SetDrawColor(160, 160, 160)
	pdf.SetLineWidth(0.2)
	pdf.Rect(mapX, mapY, mapW, mapH, "D")

	pts := make([]types.Coordinate, 0, len(res.Route)+2)
	pts = append(pts, res.Pickup, res.Dropoff)
	pts = append(pts, res.Route...)
	proj := newProjection(pts, mapX, mapY, mapW, mapH, 8)

	pdf.SetDrawColor(30, 90, 200)
	pdf.SetLineWidth(0.8)
	for i := 1; i < len(res.Route); i++ {
		x1, y1 := proj.point(res.Route[i-1])
		x2, y2 := proj.point(res.Route[i])
		pdf.Line(x1, y1, x2, y2)
	}

	drawMarker(pdf, proj, res.Pickup, "A", 20, 140, 60)
	drawMarker(pdf, proj, res.Dropoff, "B", 200, 40, 40)
}

func drawMarker(pdf *gofpdf.Fpdf, proj projection, c types.Coordinate, label string, r, g, b int) {
	x, y := proj.point(c)
	pdf.SetFillColor(r, g, b)
	pdf.SetDrawColor(255, 255, 255)
	pdf.SetLineWidth(0.4)
	pdf.Circle(x, y, 3, "FD")
	pdf.SetTextColor(255, 255, 255)
	pdf.SetFont("Helvetica", "B", 9)
	pdf.Text(x-1.3, y+1.2, label)
	pdf.SetTextColor(0, 0, 0)
}

// projection is an equirectangular fit of a coordinate set into a page box,
// with longitude scaled by the cosine of the mid latitude.
type projection struct {
	minLat, minLon   float64
	lonScale, scale  float64
	originX, originY float64
}

func newProjection(pts []types.Coordinate, x, y, w, h, pad float64) projection {
	if len(pts) == 0 {
		return projection{lonScale: 1, scale: 1, originX: x + w/2, originY: y + h/2}
	}
	minLat, maxLat := math.Inf(1), math.Inf(-1)
	minLon, maxLon := math.Inf(1), math.Inf(-1)
	for _, p := range pts {
		minLat, maxLat = math.Min(minLat, p.Lat), math.Max(maxLat, p.Lat)
		minLon, maxLon = math.Min(minLon, p.Lon), math.Max(maxLon, p.Lon)
	}

	lonScale := math.Cos((minLat + maxLat) / 2 * math.Pi / 180)
	spanX := (maxLon - minLon) * lonScale
	spanY := maxLat - minLat
	innerW, innerH := w-2*pad, h-2*pad

	scale := 1.0
	switch {
	case spanX > 0 && spanY > 0:
		scale = math.Min(innerW/spanX, innerH/spanY)
	case spanX > 0:
		scale = innerW / spanX
	case spanY > 0:
		scale = innerH / spanY
	}

	// originX/originY is the page position of (minLon, minLat), centering the drawing.
	return projection{
		minLat:   minLat,
		minLon:   minLon,
		lonScale: lonScale,
		scale:    scale,
		originX:  x + pad + (innerW-spanX*scale)/2,
		originY:  y + pad + (innerH+spanY*scale)/2,
	}
}

// point maps a coordinate to page mm; north is up.
func (p projection) point(c types.Coordinate) (float64, float64) {
	x := p.originX + (c.Lon-p.minLon)*p.lonScale*p.scale
	y := p.originY - (c.Lat-p.minLat)*p.scale
	return x, y
}
