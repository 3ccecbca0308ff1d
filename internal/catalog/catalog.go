// Package catalog manages the on-disk YAML catalog of known service
// definitions. The catalog seeds container creation and supplies the
// authoritative cluster assignment for containers deployed from it.
package catalog

import (
	"fmt"
	"os"
	"sort"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"quayside/models"
)

// Service is one catalog entry: everything needed to deploy a container
// plus its cluster assignment.
type Service struct {
	Name          string               `yaml:"name" json:"name"`
	Image         string               `yaml:"image" json:"image"`
	Cluster       string               `yaml:"cluster,omitempty" json:"cluster,omitempty"`
	Env           map[string]string    `yaml:"environment,omitempty" json:"environment,omitempty"`
	Ports         []models.PortMapping `yaml:"ports,omitempty" json:"ports,omitempty"`
	Labels        map[string]string    `yaml:"labels,omitempty" json:"labels,omitempty"`
	RestartPolicy string               `yaml:"restart_policy,omitempty" json:"restartPolicy,omitempty"`
}

type catalogFile struct {
	Services []Service `yaml:"services"`
}

// Catalog is a thread-safe view over the service catalog file.
type Catalog struct {
	path string

	mu       sync.RWMutex
	services map[string]Service
}

// Load reads the catalog at path. A missing file is an empty catalog,
// not an error; a malformed one is.
func Load(path string) (*Catalog, error) {
	c := &Catalog{
		path:     path,
		services: make(map[string]Service),
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return c, nil
		}
		return nil, fmt.Errorf("failed to read service catalog: %w", err)
	}

	var file catalogFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse service catalog: %w", err)
	}

	for _, svc := range file.Services {
		if svc.Name == "" || svc.Image == "" {
			return nil, fmt.Errorf("service catalog entry missing name or image")
		}
		c.services[strings.ToLower(svc.Name)] = svc
	}
	return c, nil
}

// Services returns all entries sorted by name.
func (c *Catalog) Services() []Service {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]Service, 0, len(c.services))
	for _, svc := range c.services {
		out = append(out, svc)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Get looks up a service by name, case-insensitively.
func (c *Catalog) Get(name string) (Service, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	svc, ok := c.services[strings.ToLower(name)]
	return svc, ok
}

// Put adds or replaces an entry and persists the catalog.
func (c *Catalog) Put(svc Service) error {
	if svc.Name == "" || svc.Image == "" {
		return fmt.Errorf("service name and image are required")
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.services[strings.ToLower(svc.Name)] = svc
	return c.saveLocked()
}

// ClusterFor returns the catalog cluster assignment for a service name,
// or "" when the name is not in the catalog.
func (c *Catalog) ClusterFor(name string) string {
	if svc, ok := c.Get(name); ok {
		return svc.Cluster
	}
	return ""
}

// Spec converts a catalog entry into a container creation spec. The
// cluster assignment travels as a label so it survives on the container
// itself.
func (s Service) Spec() models.CreateContainerSpec {
	labels := make(map[string]string, len(s.Labels)+1)
	for k, v := range s.Labels {
		labels[k] = v
	}
	if s.Cluster != "" {
		labels["quayside.cluster"] = s.Cluster
	}

	return models.CreateContainerSpec{
		Name:          s.Name,
		Image:         s.Image,
		Env:           s.Env,
		Ports:         s.Ports,
		Labels:        labels,
		RestartPolicy: s.RestartPolicy,
	}
}

func (c *Catalog) saveLocked() error {
	file := catalogFile{Services: make([]Service, 0, len(c.services))}
	for _, svc := range c.services {
		file.Services = append(file.Services, svc)
	}
	sort.Slice(file.Services, func(i, j int) bool {
		return file.Services[i].Name < file.Services[j].Name
	})

	data, err := yaml.Marshal(&file)
	if err != nil {
		return fmt.Errorf("failed to encode service catalog: %w", err)
	}

	if err := os.WriteFile(c.path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write service catalog: %w", err)
	}
	return nil
}
