package math

import (
	"math"
	"testing"
)

func TestIdentity(t *testing.T) {
	m := Identity()
	if m[0] != 1 || m[5] != 1 || m[10] != 1 || m[15] != 1 {
		t.Error("Identity diagonal should be 1")
	}
	if m[1] != 0 || m[4] != 0 {
		t.Error("Identity off-diagonal should be 0")
	}
}

func TestMulIdentity(t *testing.T) {
	m := Translate(1, 2, 3)
	id := Identity()
	result := m.Mul(id)

	for i := 0; i < 16; i++ {
		if result[i] != m[i] {
			t.Errorf("M * I should equal M, element %d: got %f, want %f", i, result[i], m[i])
		}
	}
}

func TestTransformPoint(t *testing.T) {
	m := Translate(10, 20, 30)
	result := m.TransformPoint(Vec3{1, 2, 3})

	expected := Vec3{11, 22, 33}
	if result != expected {
		t.Errorf("TransformPoint: got %v, want %v", result, expected)
	}
}

func TestRotateY90(t *testing.T) {
	m := RotateY(float32(math.Pi / 2))
	result := m.TransformPoint(Vec3{1, 0, 0})

	// After a 90 degree Y rotation, (1,0,0) lands on approximately (0,0,-1).
	if !approx(result.X, 0) || !approx(result.Y, 0) || !approx(result.Z, -1) {
		t.Errorf("RotateY(90).TransformPoint: got %v, want ~(0,0,-1)", result)
	}
}

func TestEulerXYZ_TranslationOnly(t *testing.T) {
	m := EulerXYZ(Vec3{5, 6, 7}, Vec3{})
	result := m.TransformPoint(Vec3{1, 1, 1})

	expected := Vec3{6, 7, 8}
	if result != expected {
		t.Errorf("EulerXYZ translation: got %v, want %v", result, expected)
	}
}

func TestEulerXYZ_Yaw(t *testing.T) {
	m := EulerXYZ(Vec3{}, Vec3{Y: float32(math.Pi / 2)})
	result := m.TransformPoint(Vec3{1, 0, 0})

	if !approx(result.X, 0) || !approx(result.Z, -1) {
		t.Errorf("EulerXYZ yaw: got %v, want ~(0,0,-1)", result)
	}
}

func approx(got, want float32) bool {
	d := got - want
	if d < 0 {
		d = -d
	}
	return d < 1e-5
}
