package models

// ContainerSummary is one row of the host's container inventory.
// It is fetched fresh from the Docker daemon on every listing call and
// never cached across requests.
type ContainerSummary struct {
	ID      string            `json:"id"`
	Name    string            `json:"name"`
	Image   string            `json:"image"`
	State   string            `json:"state"`
	Status  string            `json:"status"`
	Labels  map[string]string `json:"labels,omitempty"`
	Created int64             `json:"created"`
}

// ContainerDetail is the inspect view of a single container.
type ContainerDetail struct {
	ID            string            `json:"id"`
	Name          string            `json:"name"`
	Image         string            `json:"image"`
	State         string            `json:"state"`
	Status        string            `json:"status"`
	Labels        map[string]string `json:"labels,omitempty"`
	Env           []string          `json:"environment,omitempty"`
	RestartPolicy string            `json:"restartPolicy,omitempty"`
	StartedAt     string            `json:"startedAt,omitempty"`
	ExitCode      int               `json:"exitCode"`
}

// PortMapping maps a container port to a host port.
type PortMapping struct {
	HostPort      int    `json:"hostPort" yaml:"host_port"`
	ContainerPort int    `json:"containerPort" yaml:"container_port" validate:"required,min=1,max=65535"`
	Protocol      string `json:"protocol,omitempty" yaml:"protocol,omitempty"`
}

// CreateContainerSpec describes a container to create and start.
type CreateContainerSpec struct {
	Name          string            `json:"name" validate:"required"`
	Image         string            `json:"image" validate:"required"`
	Env           map[string]string `json:"environment,omitempty"`
	Ports         []PortMapping     `json:"ports,omitempty" validate:"dive"`
	Labels        map[string]string `json:"labels,omitempty"`
	RestartPolicy string            `json:"restartPolicy,omitempty" validate:"omitempty,oneof=no always unless-stopped on-failure"`
}
