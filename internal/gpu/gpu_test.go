//go:build !nogpu

package gpu

import (
	"context"
	"encoding/binary"
	"errors"
	"image"
	"math"
	"strings"
	"testing"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal/noop"

	"github.com/gogpu/filmlab/adjust"
	"github.com/gogpu/filmlab/internal/filter"
	"github.com/gogpu/filmlab/internal/pixelmath"
	"github.com/gogpu/filmlab/internal/tier"
	"github.com/gogpu/filmlab/profile"
	"github.com/gogpu/filmlab/shadergen"
)

// createNoopDevice opens a noop HAL device wrapped as an external Device.
func createNoopDevice(t *testing.T) *Device {
	t.Helper()
	api := noop.API{}
	instance, err := api.CreateInstance(nil)
	if err != nil {
		t.Fatalf("CreateInstance failed: %v", err)
	}
	adapters := instance.EnumerateAdapters(nil)
	openDev, err := adapters[0].Adapter.Open(0, gputypes.DefaultLimits())
	if err != nil {
		instance.Destroy()
		t.Fatalf("Open failed: %v", err)
	}
	t.Cleanup(func() {
		openDev.Device.Destroy()
		instance.Destroy()
	})
	return NewDevice(openDev.Device, openDev.Queue)
}

// skipIfNaga skips tests when naga cannot lower the programs yet.
func skipIfNaga(t *testing.T, err error) {
	t.Helper()
	if err == nil {
		return
	}
	msg := err.Error()
	for _, s := range []string{"not yet implemented", "not supported", "lowering error", "atomic"} {
		if strings.Contains(msg, s) {
			t.Skipf("naga limitation: %v", err)
		}
	}
}

func frame(t *testing.T, s *adjust.Set) *tier.Frame {
	t.Helper()
	src := image.NewNRGBA(image.Rect(0, 0, 16, 12))
	for i := range src.Pix {
		src.Pix[i] = uint8(i)
	}
	p := profile.Neutral()
	return tier.NewFrame(src, s, &p, nil, 7, 16, 12)
}

func readVec4(t *testing.T, u *uniforms, name string, index int) [4]float32 {
	t.Helper()
	off, ok := u.prog.Offset(name)
	if !ok {
		t.Fatalf("field %q not in layout", name)
	}
	off += index * 16
	var v [4]float32
	for i := range v {
		v[i] = math.Float32frombits(binary.LittleEndian.Uint32(u.buf[off+i*4:]))
	}
	return v
}

func TestMasterUniformsIdentityDefaults(t *testing.T) {
	ps, err := shadergen.Generate(shadergen.AllFeatures())
	if err != nil {
		t.Fatal(err)
	}
	s := adjust.Defaults()
	m := pixelmath.NewMaster(&s, 16, 12)

	u := newUniforms(ps.Master)
	u.size(16, 12)
	u.master(&m)

	if got := readVec4(t, u, "size", 0); got != [4]float32{16, 12, 1.0 / 16, 1.0 / 12} {
		t.Errorf("size = %v", got)
	}
	if got := readVec4(t, u, "exposure", 0); got[0] != 1 {
		t.Errorf("exposure = %v, want 1", got[0])
	}
	if got := readVec4(t, u, "wb", 0); got != [4]float32{1, 1, 1, 0} {
		t.Errorf("wb = %v, want unit gains", got)
	}
	if got := readVec4(t, u, "tone", 0); got[1] != 1 {
		t.Errorf("tone white point = %v, want 1", got[1])
	}
	if got := readVec4(t, u, "grade_pivot", 0); got != [4]float32{0.5, 0.3, 0, 0} {
		t.Errorf("grade_pivot = %v", got)
	}
	for i := 0; i < int(adjust.BandCount); i++ {
		if got := readVec4(t, u, "hsl", i); got[3] != pixelmath.BandCenter(i) {
			t.Errorf("hsl[%d] center = %v, want %v", i, got[3], pixelmath.BandCenter(i))
		}
	}
}

func TestUniformsDropUndeclaredFields(t *testing.T) {
	ps, err := shadergen.Generate(shadergen.Config{})
	if err != nil {
		t.Fatal(err)
	}
	s := adjust.Defaults()
	s.Temperature = 40
	m := pixelmath.NewMaster(&s, 8, 8)
	u := newUniforms(ps.Master)
	u.master(&m)
	if len(u.buf) != ps.Master.UniformSize() {
		t.Fatalf("buffer is %d bytes, want %d", len(u.buf), ps.Master.UniformSize())
	}
	if _, ok := ps.Master.Offset("wb"); ok {
		t.Fatal("wb declared without white balance")
	}
}

func TestFilmUniformsIdentityDefaults(t *testing.T) {
	ps, err := shadergen.Generate(shadergen.AllFeatures())
	if err != nil {
		t.Fatal(err)
	}
	s := adjust.Defaults()
	p := profile.Neutral()
	f := pixelmath.NewFilm(&p, &s, nil, 42, 8, 8)
	u := newUniforms(ps.Film)
	u.film(&f)

	if got := readVec4(t, u, "film_tone", 0); got[0] != 1 {
		t.Errorf("film gamma = %v, want 1", got[0])
	}
	rows := []string{"matrix_r", "matrix_g", "matrix_b"}
	for i, name := range rows {
		got := readVec4(t, u, name, 0)
		for j := 0; j < 3; j++ {
			want := float32(0)
			if i == j {
				want = 1
			}
			if got[j] != want {
				t.Errorf("%s[%d] = %v, want %v", name, j, got[j], want)
			}
		}
	}
	if got := readVec4(t, u, "lut_info", 0); got[0] != identityLUTSize || got[1] != 0 {
		t.Errorf("lut_info = %v, want identity size with zero intensity", got)
	}
	off, _ := ps.Film.Offset("grain_seed")
	if seed := binary.LittleEndian.Uint32(u.buf[off:]); seed != 42 {
		t.Errorf("grain seed = %d, want 42", seed)
	}
}

func TestBlurUniformsCarryKernel(t *testing.T) {
	u := newUniforms(blurProgram)
	kern := filter.CachedKernel(3)
	u.blur(kern, true)
	if got := readVec4(t, u, "dir", 0); got[0] != 1 || got[2] != kern.Step {
		t.Errorf("dir = %v, want horizontal with step %v", got, kern.Step)
	}
	for i := 0; i < 13; i++ {
		got := readVec4(t, u, "weights", i/4)[i%4]
		if got != kern.Weights[i] {
			t.Errorf("weight %d = %v, want %v", i, got, kern.Weights[i])
		}
	}
}

func TestLocalsDataLayout(t *testing.T) {
	locals := []pixelmath.Local{
		{Kind: pixelmath.KindRadial, Amount: 0.5, CX: 0.25, Invert: true},
		{Kind: pixelmath.KindBrush, Amount: 1, Points: []adjust.BrushPoint{
			{X: 0.1, Y: 0.2, Radius: 0.05, Strength: 1},
			{X: 0.3, Y: 0.4, Radius: 0.05, Strength: 0.5},
		}},
	}
	data := localsData(locals)
	if want := (2*localStride + 2) * 4; len(data) != want {
		t.Fatalf("len = %d, want %d", len(data), want)
	}
	if data[3] != 1 {
		t.Error("invert flag not packed")
	}
	if data[4] != 0.25 {
		t.Errorf("center x = %v", data[4])
	}
	brush := data[localStride*4:]
	if brush[0] != pixelmath.KindBrush || brush[11] != 2 {
		t.Errorf("brush kind/count = %v/%v", brush[0], brush[11])
	}
	if brush[22] != 2*localStride {
		t.Errorf("point offset = %v, want %d", brush[22], 2*localStride)
	}
	pts := data[2*localStride*4:]
	if pts[4] != float32(0.3) || pts[7] != 0.5 {
		t.Errorf("second point = %v", pts[4:8])
	}

	if empty := localsData(nil); len(empty) != 4 {
		t.Errorf("empty locals = %d floats, want one vec4", len(empty))
	}
}

func TestCurvesDataIdentityRamp(t *testing.T) {
	var m pixelmath.Master
	data := curvesData(&m)
	if len(data) != 4*pixelmath.CurveSize {
		t.Fatalf("len = %d", len(data))
	}
	for row := 0; row < 4; row++ {
		base := row * pixelmath.CurveSize
		if data[base] != 0 || data[base+pixelmath.CurveSize-1] != 1 {
			t.Errorf("row %d endpoints = %v, %v", row, data[base], data[base+pixelmath.CurveSize-1])
		}
	}
}

func TestPackPixelsHonorsStride(t *testing.T) {
	parent := image.NewNRGBA(image.Rect(0, 0, 4, 4))
	for i := range parent.Pix {
		parent.Pix[i] = uint8(i)
	}
	sub := parent.SubImage(image.Rect(1, 1, 3, 3)).(*image.NRGBA)
	packed := packPixels(sub)
	if len(packed) != 2*2*4 {
		t.Fatalf("len = %d", len(packed))
	}
	if packed[0] != parent.Pix[parent.PixOffset(1, 1)] {
		t.Error("first pixel not taken from the sub-image origin")
	}

	dst := image.NewNRGBA(image.Rect(0, 0, 2, 2))
	unpackPixels(dst, packed)
	if dst.Pix[8] != parent.Pix[parent.PixOffset(1, 2)] {
		t.Error("second row misplaced")
	}
}

func TestCheckSize(t *testing.T) {
	if err := checkSize(1024, 1024, 16); err != nil {
		t.Errorf("1024² float frame: %v", err)
	}
	err := checkSize(8192, 8192, 16)
	if !errors.Is(err, ErrTooLarge) {
		t.Fatalf("err = %v, want ErrTooLarge", err)
	}
	if !strings.Contains(err.Error(), "MiB") {
		t.Errorf("error %q does not report sizes", err)
	}
}

type fakeProvider struct {
	device, queue any
}

func (p fakeProvider) HalDevice() any { return p.device }
func (p fakeProvider) HalQueue() any  { return p.queue }

func TestDeviceFromProvider(t *testing.T) {
	if _, err := DeviceFromProvider(struct{}{}); !errors.Is(err, ErrProvider) {
		t.Errorf("plain struct: err = %v", err)
	}
	if _, err := DeviceFromProvider(fakeProvider{device: 1, queue: 2}); !errors.Is(err, ErrProvider) {
		t.Errorf("wrong types: err = %v", err)
	}

	noopDev := createNoopDevice(t)
	d, err := DeviceFromProvider(fakeProvider{device: noopDev.device, queue: noopDev.queue})
	if err != nil {
		t.Fatal(err)
	}
	if d.Lost() {
		t.Error("fresh device reported lost")
	}
	d.Close()
	// The shared device must survive Close of the wrapper.
	fence, err := noopDev.device.CreateFence()
	if err != nil {
		t.Fatalf("shared device unusable after Close: %v", err)
	}
	noopDev.device.DestroyFence(fence)
}

func TestMarkLost(t *testing.T) {
	d := NewDevice(nil, nil)
	err := d.markLost(errors.New("boom"))
	if !errors.Is(err, ErrDeviceLost) || !d.Lost() {
		t.Errorf("err = %v, lost = %v", err, d.Lost())
	}
}

func newMultiPass(t *testing.T, allowed *shadergen.Config) *MultiPass {
	t.Helper()
	mp, err := NewMultiPass(Options{Device: createNoopDevice(t), Allowed: allowed})
	skipIfNaga(t, err)
	if err != nil {
		t.Fatalf("NewMultiPass: %v", err)
	}
	t.Cleanup(mp.Close)
	return mp
}

func TestMultiPassRefusesFeaturesOutsideConfig(t *testing.T) {
	none := shadergen.Config{}
	mp := newMultiPass(t, &none)
	if mp.Tier() != tier.MultiPass {
		t.Errorf("Tier = %v", mp.Tier())
	}

	s := adjust.Defaults()
	s.Temperature = 30
	f := frame(t, &s)
	dst := image.NewNRGBA(image.Rect(0, 0, f.Width, f.Height))
	if err := mp.Render(context.Background(), f, dst); !errors.Is(err, tier.ErrUnavailable) {
		t.Errorf("err = %v, want tier.ErrUnavailable", err)
	}
}

func TestMultiPassRenderOnNoopDevice(t *testing.T) {
	mp := newMultiPass(t, nil)
	s := adjust.Defaults()
	s.Clarity = 40
	s.Sharpening = 30
	f := frame(t, &s)
	dst := image.NewNRGBA(image.Rect(0, 0, f.Width, f.Height))
	if err := mp.Render(context.Background(), f, dst); err != nil {
		skipIfNaga(t, err)
		if errors.Is(err, ErrDeviceLost) {
			t.Skipf("noop queue cannot complete a frame: %v", err)
		}
		t.Fatalf("Render: %v", err)
	}
	if mp.Lost() {
		t.Error("device lost after a successful render")
	}
	if n := mp.sets.Len(); n != 1 {
		t.Errorf("cached kernel sets = %d, want 1", n)
	}
}

func TestSinglePassLifecycle(t *testing.T) {
	sp, err := NewSinglePass(Options{Device: createNoopDevice(t)})
	skipIfNaga(t, err)
	if err != nil {
		t.Fatalf("NewSinglePass: %v", err)
	}
	if sp.Tier() != tier.SinglePass {
		t.Errorf("Tier = %v", sp.Tier())
	}
	s := adjust.Defaults()
	f := frame(t, &s)
	dst := image.NewNRGBA(image.Rect(0, 0, f.Width, f.Height))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := sp.Render(ctx, f, dst); !errors.Is(err, context.Canceled) {
		t.Errorf("canceled render: err = %v", err)
	}

	sp.Close()
	sp.Close()
	if err := sp.Render(context.Background(), f, dst); !errors.Is(err, tier.ErrUnavailable) {
		t.Errorf("render after Close: err = %v, want tier.ErrUnavailable", err)
	}
}
