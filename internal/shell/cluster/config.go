package cluster

import (
	"fmt"
	"os"
	"path/filepath"

	"k8s.io/client-go/rest"
	"k8s.io/client-go/tools/clientcmd"
)

// RESTConfig resolves the cluster configuration.
// Priority order:
//  1. Explicit kubeconfig path
//  2. In-cluster config (service account token)
//  3. KUBECONFIG environment variable
//  4. ~/.kube/config
func RESTConfig(kubeconfig string) (*rest.Config, error) {
	if kubeconfig != "" {
		config, err := clientcmd.BuildConfigFromFlags("", kubeconfig)
		if err != nil {
			return nil, fmt.Errorf("failed to load kubeconfig %s: %w", kubeconfig, err)
		}
		return config, nil
	}

	if config, err := rest.InClusterConfig(); err == nil {
		return config, nil
	}

	if env := os.Getenv(clientcmd.RecommendedConfigPathEnvVar); env != "" {
		if config, err := clientcmd.BuildConfigFromFlags("", env); err == nil {
			return config, nil
		}
	}

	if home, err := os.UserHomeDir(); err == nil {
		path := filepath.Join(home, clientcmd.RecommendedHomeDir, clientcmd.RecommendedFileName)
		if _, err := os.Stat(path); err == nil {
			if config, err := clientcmd.BuildConfigFromFlags("", path); err == nil {
				return config, nil
			}
		}
	}

	return nil, fmt.Errorf("%w: tried in-cluster, KUBECONFIG env, and ~/.kube/config", ErrNoKubeconfig)
}
