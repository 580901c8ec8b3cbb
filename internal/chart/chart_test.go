package chart

import (
	"bytes"
	"image/png"
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func TestChart(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Chart Suite")
}

var _ = Describe("ParseTheme", func() {
	It("should recognise dark and light", func() {
		Expect(ParseTheme("Dark", Light).Name).To(Equal("dark"))
		Expect(ParseTheme(" light ", Dark).Name).To(Equal("light"))
	})

	It("should fall back for unknown names", func() {
		Expect(ParseTheme("", Dark).Name).To(Equal("dark"))
		Expect(ParseTheme("sepia", Light).Name).To(Equal("light"))
	})
})

var _ = Describe("RenderBar", func() {
	decode := func(buf *bytes.Buffer) (int, int) {
		img, err := png.Decode(buf)
		Expect(err).NotTo(HaveOccurred())
		return img.Bounds().Dx(), img.Bounds().Dy()
	}

	It("should render a PNG of the requested size", func() {
		var buf bytes.Buffer
		err := RenderBar(&buf, []Bar{{Label: "10:00", Value: 50}, {Label: "14:00", Value: 25}}, BarOptions{
			Width:  400,
			Height: 200,
			Theme:  Dark,
		})
		Expect(err).NotTo(HaveOccurred())

		w, h := decode(&buf)
		Expect(w).To(Equal(400))
		Expect(h).To(Equal(200))
	})

	It("should paint the theme background", func() {
		var buf bytes.Buffer
		Expect(RenderBar(&buf, []Bar{{Label: "a", Value: 1}}, BarOptions{Theme: Dark})).To(Succeed())

		img, err := png.Decode(&buf)
		Expect(err).NotTo(HaveOccurred())
		r, g, b, _ := img.At(img.Bounds().Dx()/2, 5).RGBA()
		Expect(r >> 8).To(BeNumerically("==", Dark.Background.R))
		Expect(g >> 8).To(BeNumerically("==", Dark.Background.G))
		Expect(b >> 8).To(BeNumerically("==", Dark.Background.B))
	})

	It("should render an empty placeholder when there are no bars", func() {
		var buf bytes.Buffer
		Expect(RenderBar(&buf, nil, BarOptions{})).To(Succeed())

		w, h := decode(&buf)
		Expect(w).To(Equal(DefaultWidth))
		Expect(h).To(Equal(DefaultHeight))
	})
})
