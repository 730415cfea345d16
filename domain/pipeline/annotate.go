package pipeline

import (
	"fmt"
	"image"
	"image/color"
	"math"

	"gocv.io/x/gocv"

	"github.com/soocke/skillcheck-bot-go/domain/track"
	"github.com/soocke/skillcheck-bot-go/domain/vision"
)

var (
	colorTrack = color.RGBA{R: 255, A: 255}
	colorWhite = color.RGBA{G: 255, A: 255}
	colorGrey  = color.RGBA{B: 255, A: 255}
	colorBox   = color.RGBA{R: 255, G: 255, A: 255}
	colorAxis  = color.RGBA{R: 255, B: 255, A: 255}
	colorText  = color.RGBA{R: 255, G: 255, B: 255, A: 255}
)

// annotate draws the track, both markers and the readout onto img.
func annotate(img *gocv.Mat, region track.Region, white, grey vision.Detection, r Readout) {
	if len(region.Contour) > 0 {
		drawOutline(img, region.Contour, colorTrack)
		p := region.Contour[0]
		gocv.PutText(img, "Bar", image.Pt(p.X+10, p.Y-10), gocv.FontHersheySimplex, 0.5, colorTrack, 1)
	}
	if white.Found {
		gocv.Circle(img, white.Centroid, 7, colorWhite, -1)
		drawOutline(img, white.Contour, colorWhite)
		gocv.PutText(img, "White", white.Centroid.Add(image.Pt(10, -10)), gocv.FontHersheySimplex, 0.5, colorWhite, 1)
	}
	if grey.Found {
		gocv.Circle(img, grey.Centroid, 5, colorGrey, -1)
		drawOutline(img, grey.Contour, colorGrey)
		gocv.PutText(img, "Grey", grey.Centroid.Add(image.Pt(10, 10)), gocv.FontHersheySimplex, 0.5, colorGrey, 1)
		if rr := grey.Rect; rr != nil {
			drawOutline(img, rr.Points, colorBox)
			drawAxis(img, rr)
		}
	}
	if r.HasDistance {
		gocv.PutText(img, fmt.Sprintf("Dist: %.1f", r.Distance), image.Pt(10, 30), gocv.FontHersheySimplex, 0.4, colorText, 2)
	}
	gocv.PutText(img, fmt.Sprintf("Vel: %.1f deg/s", r.Velocity), image.Pt(10, 50), gocv.FontHersheySimplex, 0.4, colorText, 2)
}

func drawOutline(img *gocv.Mat, pts []image.Point, c color.RGBA) {
	if len(pts) == 0 {
		return
	}
	pv := gocv.NewPointsVectorFromPoints([][]image.Point{pts})
	defer pv.Close()
	gocv.DrawContours(img, pv, -1, c, 2)
}

// drawAxis draws the long axis of the rotated box through its center.
func drawAxis(img *gocv.Mat, rr *vision.RotatedRect) {
	rad := rr.Angle * math.Pi / 180
	length := float64(max(rr.Width, rr.Height)) / 2
	dx, dy := length*math.Cos(rad), length*math.Sin(rad)
	cx, cy := float64(rr.Center.X), float64(rr.Center.Y)
	start := image.Pt(int(cx-dx), int(cy-dy))
	end := image.Pt(int(cx+dx), int(cy+dy))
	gocv.Line(img, start, end, colorAxis, 2)
}
