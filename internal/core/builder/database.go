package builder

import (
	"fmt"

	"github.com/artpar/kiedeploy/internal/core/bundle"
	"github.com/artpar/kiedeploy/internal/core/deployment"
	corev1 "k8s.io/api/core/v1"
	"k8s.io/apimachinery/pkg/api/resource"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
)

// dialect describes one supported database: how its builder lays out the
// workload and how a server binds to it.
type dialect struct {
	component string
	port      int32
	dataDir   string

	envDatabase string
	envUser     string
	envPassword string

	// readiness runs inside the container with its env expanded by the shell.
	readiness string

	// Values injected into a server bound to this database.
	driver           string
	persistenceClass string
}

func (d dialect) claimName() string {
	return deployment.ApplicationNamePlaceholder + "-" + d.component + "-claim"
}

const (
	defaultDatabaseName     = "kieserver"
	defaultDatabaseUser     = "kieserver"
	defaultDatabasePassword = "kieserver1!"
	defaultVolumeCapacity   = "1Gi"
)

// databaseBuilder is the shared body of the database variants: no route,
// data directory on a volume claim, a SQL readiness check.
type databaseBuilder struct {
	Base
	opts    Options
	dialect dialect
}

func newDatabaseBuilder(opts Options, d dialect) (*databaseBuilder, error) {
	b, err := opts.load(d.component)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s template: %w", d.component, err)
	}
	db := &databaseBuilder{Base: newBase(b, d.component), opts: opts, dialect: d}
	db.Image = opts.image(d.component)
	db.Port = d.port
	db.PortName = d.component
	db.Memory = opts.property(d.component+".memory", "")
	return db, nil
}

// InitDefaultValues stages database name and credentials.
func (db *databaseBuilder) InitDefaultValues() error {
	db.SetDefault(db.dialect.envDatabase, db.opts.property(db.dialect.component+".database", defaultDatabaseName))
	db.SetDefault(db.dialect.envUser, db.opts.property(db.dialect.component+".user", defaultDatabaseUser))
	db.SetDefault(db.dialect.envPassword, db.opts.property(db.dialect.component+".password", defaultDatabasePassword))
	return nil
}

// ConfigureWorkload mounts the data directory from the volume claim, adding
// the claim when the template did not declare it.
func (db *databaseBuilder) ConfigureWorkload() error {
	if err := db.Base.ConfigureWorkload(); err != nil {
		return err
	}
	w, c, err := db.workload()
	if err != nil {
		return err
	}

	claim := db.dialect.claimName()
	if _, ok := db.Deployment().Bundle().Object(bundle.KindVolumeClaim, claim); !ok {
		if err := db.Deployment().Bundle().AddObject(volumeClaim(claim)); err != nil {
			return err
		}
	}

	volume := db.dialect.component + "-data"
	c.VolumeMounts = append(c.VolumeMounts, corev1.VolumeMount{Name: volume, MountPath: db.dialect.dataDir})
	w.Spec.Template.Spec.Volumes = append(w.Spec.Template.Spec.Volumes, corev1.Volume{
		Name: volume,
		VolumeSource: corev1.VolumeSource{
			PersistentVolumeClaim: &corev1.PersistentVolumeClaimVolumeSource{ClaimName: claim},
		},
	})
	return nil
}

// ConfigureRoute adds nothing: databases are not exposed outside the cluster.
func (db *databaseBuilder) ConfigureRoute() error {
	return nil
}

// ConfigureReadinessProbe runs a trivial query with the container's own
// credentials.
func (db *databaseBuilder) ConfigureReadinessProbe() error {
	_, c, err := db.workload()
	if err != nil {
		return err
	}
	c.ReadinessProbe = execProbe([]string{"/bin/sh", "-i", "-c", db.dialect.readiness}, 5)
	return nil
}

func (db *databaseBuilder) setDatabaseName(name string) {
	db.Deployment().UpsertEnvironmentVariable(db.dialect.envDatabase, name)
}

func (db *databaseBuilder) setDatabaseUser(user, password string) {
	db.Deployment().UpsertEnvironmentVariable(db.dialect.envUser, user)
	db.Deployment().UpsertEnvironmentVariable(db.dialect.envPassword, password)
}

func volumeClaim(name string) *corev1.PersistentVolumeClaim {
	return &corev1.PersistentVolumeClaim{
		ObjectMeta: metav1.ObjectMeta{Name: name},
		Spec: corev1.PersistentVolumeClaimSpec{
			AccessModes: []corev1.PersistentVolumeAccessMode{corev1.ReadWriteOnce},
			Resources: corev1.VolumeResourceRequirements{
				Requests: corev1.ResourceList{
					corev1.ResourceStorage: resource.MustParse(defaultVolumeCapacity),
				},
			},
		},
	}
}
