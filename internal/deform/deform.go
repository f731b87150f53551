// Package deform back-calculates forensic energy quantities from structural
// damage: strain energy over a tetrahedral mesh, plastic dissipation, and
// the empirical crush-depth model.
package deform

import (
	"errors"
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/reconlab/crashsim/internal/geom"
	"github.com/reconlab/crashsim/internal/material"
)

// minRestVolume rejects rest elements too flat to invert.
const minRestVolume = 1e-12

// ErrBadMesh is returned for meshes the energy pass cannot evaluate.
var ErrBadMesh = errors.New("invalid deformable mesh")

// DeformableBody is a tetrahedral node/element mesh with a material model
// and a per-element plastic-strain accumulator. It lives independently of
// the rigid body it describes; BodyID correlates the two for reporting.
type DeformableBody struct {
	BodyID int

	// Nodes are the current (deformed) node positions; RestNodes the
	// undamaged reference. Same length, same ordering.
	Nodes     []mgl64.Vec3
	RestNodes []mgl64.Vec3

	// Elements index four nodes each.
	Elements [][4]int

	Material material.Material

	// PlasticStrain accumulates permanent strain per element.
	PlasticStrain []float64

	lambda, mu float64

	restInv     []mgl64.Mat3
	restVolumes []float64
}

// New builds a deformable body from rest geometry. Nodes start undeformed.
func New(bodyID int, rest []mgl64.Vec3, elements [][4]int, mat material.Material) (*DeformableBody, error) {
	if err := mat.Validate(); err != nil {
		return nil, err
	}
	if len(rest) < 4 {
		return nil, fmt.Errorf("%w: need at least 4 nodes, got %d", ErrBadMesh, len(rest))
	}
	if len(elements) == 0 {
		return nil, fmt.Errorf("%w: no elements", ErrBadMesh)
	}

	d := &DeformableBody{
		BodyID:        bodyID,
		Nodes:         append([]mgl64.Vec3(nil), rest...),
		RestNodes:     append([]mgl64.Vec3(nil), rest...),
		Elements:      elements,
		Material:      mat,
		PlasticStrain: make([]float64, len(elements)),
		restInv:       make([]mgl64.Mat3, len(elements)),
		restVolumes:   make([]float64, len(elements)),
	}
	d.lambda, d.mu = mat.Lame()

	for i, el := range elements {
		for _, n := range el {
			if n < 0 || n >= len(rest) {
				return nil, fmt.Errorf("%w: element %d references node %d of %d", ErrBadMesh, i, n, len(rest))
			}
		}
		dm0 := shapeMatrix(rest, el)
		vol := math.Abs(dm0.Det()) / 6
		if vol < minRestVolume {
			return nil, fmt.Errorf("%w: element %d is degenerate (volume %v)", ErrBadMesh, i, vol)
		}
		d.restInv[i] = dm0.Inv()
		d.restVolumes[i] = vol
	}
	return d, nil
}

// NewFromMesh tetrahedralizes a closed triangle surface by fanning every
// face to the mesh centroid. Faces coplanar with the centroid make the mesh
// invalid.
func NewFromMesh(bodyID int, mesh geom.TriangleMesh, mat material.Material) (*DeformableBody, error) {
	if len(mesh.Vertices) == 0 || len(mesh.Indices) == 0 {
		return nil, fmt.Errorf("%w: empty surface mesh", ErrBadMesh)
	}

	centroid := mgl64.Vec3{}
	for _, v := range mesh.Vertices {
		centroid = centroid.Add(v)
	}
	centroid = centroid.Mul(1 / float64(len(mesh.Vertices)))

	nodes := append(append([]mgl64.Vec3(nil), mesh.Vertices...), centroid)
	center := len(nodes) - 1

	elements := make([][4]int, 0, len(mesh.Indices))
	for _, tri := range mesh.Indices {
		elements = append(elements, [4]int{tri[0], tri[1], tri[2], center})
	}
	return New(bodyID, nodes, elements, mat)
}

// shapeMatrix is the edge matrix of a tetrahedron: columns are the three
// edges from the first node.
func shapeMatrix(nodes []mgl64.Vec3, el [4]int) mgl64.Mat3 {
	p0 := nodes[el[0]]
	return mgl64.Mat3FromCols(
		nodes[el[1]].Sub(p0),
		nodes[el[2]].Sub(p0),
		nodes[el[3]].Sub(p0),
	)
}

// ElementCount returns the number of tetrahedra.
func (d *DeformableBody) ElementCount() int { return len(d.Elements) }

// Volume returns the total rest volume in m³.
func (d *DeformableBody) Volume() float64 {
	total := 0.0
	for _, v := range d.restVolumes {
		total += v
	}
	return total
}

// Mass returns rest volume times material density.
func (d *DeformableBody) Mass() float64 {
	return d.Volume() * d.Material.Density
}

// AddPlasticStrain accumulates permanent strain on one element.
func (d *DeformableBody) AddPlasticStrain(element int, strain float64) error {
	if element < 0 || element >= len(d.Elements) {
		return fmt.Errorf("%w: element %d of %d", ErrBadMesh, element, len(d.Elements))
	}
	if strain < 0 {
		return fmt.Errorf("%w: negative plastic strain %v", ErrBadMesh, strain)
	}
	d.PlasticStrain[element] += strain
	return nil
}

// ElasticEnergy sums the linear-elastic strain energy over all elements:
// deformation gradient F = Dm·Dm0⁻¹, Green strain E = ½(FᵀF − I), stress
// σ = λ·tr(E)·I + 2μ·E, density ½·σ:E times rest volume.
func (d *DeformableBody) ElasticEnergy() float64 {
	total := 0.0
	for i := range d.Elements {
		total += d.elementElasticEnergy(i)
	}
	return total
}

func (d *DeformableBody) elementElasticEnergy(i int) float64 {
	f := shapeMatrix(d.Nodes, d.Elements[i]).Mul3(d.restInv[i])

	strain := f.Transpose().Mul3(f).Sub(mgl64.Ident3()).Mul(0.5)
	tr := strain.Trace()
	stress := mgl64.Ident3().Mul(d.lambda * tr).Add(strain.Mul(2 * d.mu))

	density := 0.0
	for r := 0; r < 3; r++ {
		for c := 0; c < 3; c++ {
			density += stress.At(r, c) * strain.At(r, c)
		}
	}
	return 0.5 * density * d.restVolumes[i]
}

// PlasticEnergy sums yield_strength · plastic_strain · element volume.
func (d *DeformableBody) PlasticEnergy() float64 {
	total := 0.0
	for i := range d.Elements {
		total += d.Material.YieldStrength * d.PlasticStrain[i] * d.restVolumes[i]
	}
	return total
}

// TotalEnergy is the elastic plus plastic deformation energy.
func (d *DeformableBody) TotalEnergy() float64 {
	return d.ElasticEnergy() + d.PlasticEnergy()
}

// MaxPlasticStrain returns the largest per-element accumulated strain.
func (d *DeformableBody) MaxPlasticStrain() float64 {
	max := 0.0
	for _, ps := range d.PlasticStrain {
		if ps > max {
			max = ps
		}
	}
	return max
}

// MeanPlasticStrain averages the accumulated strain over all elements.
func (d *DeformableBody) MeanPlasticStrain() float64 {
	if len(d.PlasticStrain) == 0 {
		return 0
	}
	total := 0.0
	for _, ps := range d.PlasticStrain {
		total += ps
	}
	return total / float64(len(d.PlasticStrain))
}

// EnergyReport is the forensic summary for one analyzed structure.
type EnergyReport struct {
	BodyID            int     `json:"bodyId"`
	ElasticEnergy     float64 `json:"elasticEnergy"`
	PlasticEnergy     float64 `json:"plasticEnergy"`
	TotalEnergy       float64 `json:"totalEnergy"`
	EES               float64 `json:"ees"`
	CrushDepth        float64 `json:"crushDepth"`
	MaxPlasticStrain  float64 `json:"maxPlasticStrain"`
	MeanPlasticStrain float64 `json:"meanPlasticStrain"`
}

// Report evaluates the full energy analysis. vehicleMass is the mass of the
// vehicle the structure belongs to (not the mesh mass); crush supplies the
// empirical depth model.
func (d *DeformableBody) Report(crush material.CrushStiffness, vehicleMass float64) EnergyReport {
	elastic := d.ElasticEnergy()
	plastic := d.PlasticEnergy()
	total := elastic + plastic
	return EnergyReport{
		BodyID:            d.BodyID,
		ElasticEnergy:     elastic,
		PlasticEnergy:     plastic,
		TotalEnergy:       total,
		EES:               EES(total, vehicleMass),
		CrushDepth:        crush.Depth(total),
		MaxPlasticStrain:  d.MaxPlasticStrain(),
		MeanPlasticStrain: d.MeanPlasticStrain(),
	}
}

// EES is the energy-equivalent speed sqrt(2E/m) for deformation energy E
// absorbed by a vehicle of mass m.
func EES(energy, mass float64) float64 {
	if energy <= 0 || mass <= 0 {
		return 0
	}
	return math.Sqrt(2 * energy / mass)
}

// DeltaV estimates the speed change from the energy dissipated in the
// collision phase.
func DeltaV(dissipated, mass float64) float64 {
	return EES(dissipated, mass)
}
