package validation

import (
	"testing"

	"github.com/artpar/kiedeploy/internal/core/bundle"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
)

func service(name string) *corev1.Service {
	return &corev1.Service{
		TypeMeta:   metav1.TypeMeta{APIVersion: "v1", Kind: string(bundle.KindService)},
		ObjectMeta: metav1.ObjectMeta{Name: name},
	}
}

func newBundle(t *testing.T, objects ...bundle.Object) *bundle.Bundle {
	t.Helper()
	b := bundle.New("test")
	for _, obj := range objects {
		require.NoError(t, b.AddObject(obj))
	}
	return b
}

// =============================================================================
// ValidateSubmittable Tests
// =============================================================================

func TestValidateSubmittable_Valid(t *testing.T) {
	b := newBundle(t, service("shop-kieserver"))
	require.NoError(t, b.AddParameter(bundle.Parameter{Name: "DB_VOLUME_CAPACITY", Value: "1Gi", Required: true}))
	require.NoError(t, b.AddParameter(bundle.Parameter{Name: "KIE_SERVER_PWD", Required: true, Generate: "expression"}))

	field, msg := ValidateSubmittable(b)
	assert.Empty(t, field)
	assert.Empty(t, msg)
}

func TestValidateSubmittable_NoObjects(t *testing.T) {
	field, msg := ValidateSubmittable(bundle.New("empty"))
	assert.Equal(t, "objects", field)
	assert.Equal(t, "bundle empty has no objects", msg)
}

func TestValidateSubmittable_EmptyName(t *testing.T) {
	svc := service("shop")
	b := newBundle(t, svc)
	svc.Name = ""

	field, msg := ValidateSubmittable(b)
	assert.Equal(t, "metadata.name", field)
	assert.Equal(t, "Service in bundle test has no name", msg)
}

func TestValidateSubmittable_UnresolvedName(t *testing.T) {
	field, msg := ValidateSubmittable(newBundle(t, service("${APPLICATION_NAME}-kieserver")))
	assert.Equal(t, "metadata.name", field)
	assert.Equal(t, "Service ${APPLICATION_NAME}-kieserver has an unresolved parameter", msg)
}

func TestValidateSubmittable_RequiredParameterWithoutValue(t *testing.T) {
	b := newBundle(t, service("shop"))
	require.NoError(t, b.AddParameter(bundle.Parameter{Name: "APPLICATION_NAME", Required: true}))

	field, msg := ValidateSubmittable(b)
	assert.Equal(t, "parameters", field)
	assert.Equal(t, "required parameter APPLICATION_NAME has no value", msg)
}

func TestValidateSubmittable_OptionalParameterWithoutValue(t *testing.T) {
	b := newBundle(t, service("shop"))
	require.NoError(t, b.AddParameter(bundle.Parameter{Name: "OPTIONAL"}))

	field, _ := ValidateSubmittable(b)
	assert.Empty(t, field)
}

// =============================================================================
// CanSubmit Tests
// =============================================================================

func TestCanSubmit_AllValid(t *testing.T) {
	allowed, reason := CanSubmit([]*bundle.Bundle{
		newBundle(t, service("a")),
		newBundle(t, service("b")),
	})
	assert.True(t, allowed)
	assert.Empty(t, reason)
}

func TestCanSubmit_FirstProblemReported(t *testing.T) {
	allowed, reason := CanSubmit([]*bundle.Bundle{
		newBundle(t, service("a")),
		bundle.New("empty"),
		newBundle(t, service("${X}")),
	})
	assert.False(t, allowed)
	assert.Equal(t, "objects: bundle empty has no objects", reason)
}

func TestCanSubmit_None(t *testing.T) {
	allowed, reason := CanSubmit(nil)
	assert.True(t, allowed)
	assert.Empty(t, reason)
}
