// Package timeline compiles an augmented edit spec into an FCPXML project:
// one sequence whose spine holds one evenly spaced clip container per short,
// with nested intro/outro/body references, caption titles, sfx audio and
// transition markers.
package timeline

import (
	"encoding/xml"
	"fmt"
	"math"
)

// Version is the FCPXML document version written.
const Version = "1.9"

// Document is the root <fcpxml> element.
type Document struct {
	XMLName   xml.Name  `xml:"fcpxml"`
	Version   string    `xml:"version,attr"`
	Resources Resources `xml:"resources"`
	Library   Library   `xml:"library"`
}

// Resources lists formats, media assets and title effects referenced by id.
type Resources struct {
	Formats []Format `xml:"format"`
	Assets  []Asset  `xml:"asset"`
	Effects []Effect `xml:"effect"`
}

type Format struct {
	ID            string `xml:"id,attr"`
	Name          string `xml:"name,attr"`
	FrameDuration string `xml:"frameDuration,attr"`
	Width         int    `xml:"width,attr"`
	Height        int    `xml:"height,attr"`
}

type Asset struct {
	ID       string `xml:"id,attr"`
	Name     string `xml:"name,attr"`
	Src      string `xml:"src,attr"`
	Start    string `xml:"start,attr"`
	HasVideo string `xml:"hasVideo,attr,omitempty"`
	HasAudio string `xml:"hasAudio,attr,omitempty"`
	Format   string `xml:"format,attr,omitempty"`
}

type Effect struct {
	ID   string `xml:"id,attr"`
	Name string `xml:"name,attr"`
	UID  string `xml:"uid,attr"`
}

type Library struct {
	Events []Event `xml:"event"`
}

type Event struct {
	Name     string    `xml:"name,attr"`
	Projects []Project `xml:"project"`
}

type Project struct {
	Name     string   `xml:"name,attr"`
	Sequence Sequence `xml:"sequence"`
}

type Sequence struct {
	Format   string `xml:"format,attr"`
	Duration string `xml:"duration,attr"`
	TCStart  string `xml:"tcStart,attr"`
	TCFormat string `xml:"tcFormat,attr"`
	Spine    Spine  `xml:"spine"`
}

type Spine struct {
	Clips []Clip `xml:"clip"`
}

// Clip is one spine element. Offset is its position on the sequence; Start is
// the source time nested element offsets are expressed in.
type Clip struct {
	Name        string       `xml:"name,attr"`
	Offset      string       `xml:"offset,attr"`
	Start       string       `xml:"start,attr"`
	Duration    string       `xml:"duration,attr"`
	AssetClips  []AssetClip  `xml:"asset-clip"`
	Titles      []Title      `xml:"title"`
	Audio       []Audio      `xml:"audio"`
	Transitions []Transition `xml:"transition"`
}

type AssetClip struct {
	Name     string `xml:"name,attr"`
	Ref      string `xml:"ref,attr"`
	Lane     int    `xml:"lane,attr,omitempty"`
	Offset   string `xml:"offset,attr"`
	Start    string `xml:"start,attr,omitempty"`
	Duration string `xml:"duration,attr"`
}

type Title struct {
	Name     string `xml:"name,attr"`
	Ref      string `xml:"ref,attr"`
	Lane     int    `xml:"lane,attr"`
	Offset   string `xml:"offset,attr"`
	Duration string `xml:"duration,attr"`
	Text     string `xml:"text>text-style"`
}

type Audio struct {
	Name     string `xml:"name,attr"`
	Ref      string `xml:"ref,attr"`
	Lane     int    `xml:"lane,attr"`
	Offset   string `xml:"offset,attr"`
	Duration string `xml:"duration,attr"`
	Role     string `xml:"role,attr"`
}

// Transition is an instantaneous marker; it carries no duration.
type Transition struct {
	Name   string `xml:"name,attr"`
	Offset string `xml:"offset,attr"`
}

// Encode renders the document with the XML declaration and FCPXML doctype.
func (d *Document) Encode() ([]byte, error) {
	body, err := xml.MarshalIndent(d, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode fcpxml: %w", err)
	}
	out := make([]byte, 0, len(xml.Header)+len(body)+32)
	out = append(out, xml.Header...)
	out = append(out, "<!DOCTYPE fcpxml>\n"...)
	out = append(out, body...)
	out = append(out, '\n')
	return out, nil
}

// FormatTime renders seconds as an FCPXML rational time ("25/2s", "10s")
// at millisecond precision.
func FormatTime(seconds float64) string {
	if seconds < 0 || math.IsNaN(seconds) {
		seconds = 0
	}
	num := int64(math.Round(seconds * 1000))
	den := int64(1000)
	if g := gcd(num, den); g > 1 {
		num /= g
		den /= g
	}
	if den == 1 {
		return fmt.Sprintf("%ds", num)
	}
	return fmt.Sprintf("%d/%ds", num, den)
}

func gcd(a, b int64) int64 {
	for b != 0 {
		a, b = b, a%b
	}
	if a < 0 {
		return -a
	}
	return a
}
