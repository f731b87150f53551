package vehicle

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reconlab/crashsim/internal/body"
	"github.com/reconlab/crashsim/internal/geom"
)

func TestLongitudinalForce_ZeroSlip(t *testing.T) {
	p := baseTire
	f := p.LongitudinalForce(0, 4000)
	assert.InDelta(t, 0, f, p.RollingResistance*4000)
}

func TestLongitudinalForce_NeverExceedsPeak(t *testing.T) {
	p := baseTire
	n := 4000.0
	for kappa := -2.0; kappa <= 2.0; kappa += 0.01 {
		f := p.LongitudinalForce(kappa, n)
		if math.Abs(f) > p.LongD*n+1e-9 {
			t.Fatalf("kappa=%v force %v exceeds peak %v", kappa, f, p.LongD*n)
		}
	}
}

func TestLongitudinalForce_SignAndZeroLoad(t *testing.T) {
	p := baseTire
	assert.Positive(t, p.LongitudinalForce(0.1, 4000))
	assert.Negative(t, p.LongitudinalForce(-0.1, 4000))
	assert.Zero(t, p.LongitudinalForce(0.5, 0))
	assert.Zero(t, p.LateralForce(0.1, -100))
}

func TestLateralForce_Bounded(t *testing.T) {
	p := baseTire
	n := 3500.0
	for alpha := -1.0; alpha <= 1.0; alpha += 0.005 {
		f := p.LateralForce(alpha, n)
		if math.Abs(f) > p.LatD*n+1e-9 {
			t.Fatalf("alpha=%v force %v exceeds peak %v", alpha, f, p.LatD*n)
		}
	}
}

func TestCombinedForce_FrictionCircle(t *testing.T) {
	p := baseTire
	n := 4500.0
	limit := math.Max(p.LongD, p.LatD) * n
	for _, in := range [][2]float64{{0.8, 0.4}, {-1, 0.5}, {1, -0.5}, {0.05, 0.01}} {
		fx, fy := p.CombinedForce(in[0], in[1], n)
		assert.LessOrEqual(t, math.Hypot(fx, fy), limit+1e-9,
			"kappa=%v alpha=%v", in[0], in[1])
	}
}

func TestTirePreset_SurfaceOrdering(t *testing.T) {
	dry, err := TirePreset(ClassPassenger, SurfaceDry)
	require.NoError(t, err)
	wet, err := TirePreset(ClassPassenger, SurfaceWet)
	require.NoError(t, err)
	ice, err := TirePreset(ClassPassenger, SurfaceIce)
	require.NoError(t, err)

	assert.Greater(t, dry.LongD, wet.LongD)
	assert.Greater(t, wet.LongD, ice.LongD)
	assert.Greater(t, dry.LatD, ice.LatD)
}

func TestTirePreset_ClassScaling(t *testing.T) {
	perf, err := TirePreset(ClassPerformance, SurfaceDry)
	require.NoError(t, err)
	suv, err := TirePreset(ClassSUV, SurfaceDry)
	require.NoError(t, err)
	assert.Greater(t, perf.LongD, suv.LongD)

	_, err = TirePreset("hovercraft", SurfaceDry)
	assert.Error(t, err)
	_, err = TirePreset(ClassPassenger, "gravel")
	assert.Error(t, err)
}

func TestCornerForce_LinearRegion(t *testing.T) {
	c := DefaultSuspension()
	// 5 cm compression, well inside travel
	assert.InDelta(t, c.Stiffness*0.05, c.CornerForce(-0.05, 0), 1e-9)
	// damper opposes compression rate
	assert.Greater(t, c.CornerForce(-0.05, -1.0), c.CornerForce(-0.05, 0))
}

func TestCornerForce_BumpStop(t *testing.T) {
	c := DefaultSuspension()
	x := -(c.MaxCompression + 0.03)
	linear := -c.Stiffness * x
	f := c.CornerForce(x, 0)
	assert.Greater(t, f, linear)
	assert.InDelta(t, linear+c.Stiffness*c.BumpStopFactor*0.03, f, 1e-6)
}

func TestSuspensionValidate(t *testing.T) {
	tests := []struct {
		name   string
		mut    func(*SuspensionConfig)
		wantOK bool
	}{
		{"default", func(*SuspensionConfig) {}, true},
		{"zero stiffness", func(c *SuspensionConfig) { c.Stiffness = 0 }, false},
		{"negative damping", func(c *SuspensionConfig) { c.Damping = -1 }, false},
		{"zero travel", func(c *SuspensionConfig) { c.MaxCompression = 0 }, false},
		{"bump stop below unity", func(c *SuspensionConfig) { c.BumpStopFactor = 0.5 }, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := DefaultSuspension()
			tt.mut(&c)
			err := c.Validate()
			if tt.wantOK {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, ErrInvalidSuspension)
			}
		})
	}
}

func TestAntiRollForce_ResistsRollDifference(t *testing.T) {
	c := DefaultSuspension()
	// left corner compressed 5 cm relative to right: bar pushes left up
	assert.InDelta(t, c.AntiRoll*0.05, c.AntiRollForce(-0.05, 0), 1e-9)
	assert.Zero(t, c.AntiRollForce(-0.03, -0.03))
}

func newTestVehicle(t *testing.T) *Vehicle {
	t.Helper()
	b, err := body.NewDynamic(1, geom.Box{HalfExtents: mgl64.Vec3{2.2, 0.9, 0.6}}, 1500)
	require.NoError(t, err)
	tire := baseTire
	susp := DefaultSuspension()
	v, err := New(b, &tire, &susp, 2.7, 1.6, 0.3, 0.3)
	require.NoError(t, err)
	return v
}

func TestNew_Validation(t *testing.T) {
	tire := baseTire
	susp := DefaultSuspension()

	_, err := New(nil, &tire, &susp, 2.7, 1.6, 0.3, 0.3)
	assert.ErrorIs(t, err, ErrNilBody)

	b, err := body.NewDynamic(1, geom.Sphere{Radius: 1}, 1000)
	require.NoError(t, err)

	_, err = New(b, nil, &susp, 2.7, 1.6, 0.3, 0.3)
	assert.ErrorIs(t, err, ErrNilTire)

	_, err = New(b, &tire, nil, 2.7, 1.6, 0.3, 0.3)
	assert.ErrorIs(t, err, ErrNilSuspension)

	bad := DefaultSuspension()
	bad.Stiffness = -1
	_, err = New(b, &tire, &bad, 2.7, 1.6, 0.3, 0.3)
	assert.ErrorIs(t, err, ErrInvalidSuspension)
}

func TestNormalLoads_SymmetricCompression(t *testing.T) {
	v := newTestVehicle(t)
	// drop the body 5 cm below rest ride height: all corners compress equally
	v.Body.Position = mgl64.Vec3{0, 0, 0.25}

	loads := v.NormalLoads()
	want := v.Suspension.Stiffness * 0.05
	for i, n := range loads {
		assert.InDelta(t, want, n, 1e-9, "wheel %d", i)
	}
}

func TestNormalLoads_LiftedCornerCarriesNothing(t *testing.T) {
	v := newTestVehicle(t)
	// raise the body well past full extension
	v.Body.Position = mgl64.Vec3{0, 0, 0.3 + 0.5}

	for i, n := range v.NormalLoads() {
		assert.Zero(t, n, "wheel %d", i)
	}
}

func TestNormalLoads_RollTransfersLoad(t *testing.T) {
	v := newTestVehicle(t)
	v.Body.Position = mgl64.Vec3{0, 0, 0.25}
	// roll about the forward axis: left side rises, right side compresses
	v.Body.Orientation = mgl64.QuatRotate(0.02, mgl64.Vec3{1, 0, 0})

	loads := v.NormalLoads()
	assert.Greater(t, loads[WheelFR], loads[WheelFL])
	assert.Greater(t, loads[WheelRR], loads[WheelRL])
}

func TestApplyForces_RestingVehicle(t *testing.T) {
	v := newTestVehicle(t)
	v.Body.Position = mgl64.Vec3{0, 0, 0.25}

	v.ApplyForces()

	f := v.Body.Force()
	assert.InDelta(t, 4*v.Suspension.Stiffness*0.05, f.Z(), 1e-6)
	assert.InDelta(t, 0, f.X(), 1e-9)
	assert.InDelta(t, 0, f.Y(), 1e-9)
}

func TestApplyForces_LateralForceOpposesSlide(t *testing.T) {
	v := newTestVehicle(t)
	v.Body.Position = mgl64.Vec3{0, 0, 0.25}
	v.Body.Velocity = mgl64.Vec3{15, 2, 0}

	v.ApplyForces()
	assert.Negative(t, v.Body.Force().Y())
}

func TestApplyForces_DriveSlipPushesForward(t *testing.T) {
	v := newTestVehicle(t)
	v.Body.Position = mgl64.Vec3{0, 0, 0.25}
	for i := range v.Wheels {
		v.Wheels[i].SlipRatio = 0.05
	}

	v.ApplyForces()
	assert.Positive(t, v.Body.Force().X())
}

func TestSlipAngle_SignConvention(t *testing.T) {
	v := newTestVehicle(t)
	v.Body.Position = mgl64.Vec3{0, 0, 0.25}
	v.Body.Velocity = mgl64.Vec3{20, 1.5, 0}

	for i := range v.Wheels {
		alpha := v.SlipAngle(i)
		assert.Negative(t, alpha, "wheel %d", i)
		// resulting lateral force opposes the +y slide
		assert.Negative(t, v.Tire.LateralForce(alpha, 4000), "wheel %d", i)
	}
}
