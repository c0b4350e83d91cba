package devicelink

import (
	"context"

	"github.com/seedbotics/fieldgate/internal/apperr"
	"github.com/seedbotics/fieldgate/internal/domain/robot"
)

// Cloud is the managed-broker Link. Until an endpoint is provisioned every
// operation fails with a configuration error so a misconfigured deployment
// surfaces immediately instead of silently using the mock.
type Cloud struct {
	endpoint string
}

var _ Link = (*Cloud)(nil)

// NewCloud builds a cloud link against the given broker endpoint.
func NewCloud(endpoint string) *Cloud {
	return &Cloud{endpoint: endpoint}
}

func (c *Cloud) notConfigured() error {
	if c.endpoint == "" {
		return apperr.Configuration("device link endpoint not configured")
	}
	return apperr.Configuration("cloud device link not implemented for endpoint " + c.endpoint)
}

func (c *Cloud) Connect(context.Context, string) error    { return c.notConfigured() }
func (c *Cloud) Disconnect(context.Context, string) error { return c.notConfigured() }

func (c *Cloud) Connected(context.Context, string) (bool, error) {
	return false, c.notConfigured()
}

func (c *Cloud) PublishCommand(context.Context, string, robot.Command, map[string]any) (string, error) {
	return "", c.notConfigured()
}

func (c *Cloud) Shadow(context.Context, string) (Shadow, error) {
	return Shadow{}, c.notConfigured()
}

func (c *Cloud) ReportState(context.Context, string, map[string]any) error {
	return c.notConfigured()
}

func (c *Cloud) Subscribe(context.Context, string) (<-chan Event, func(), error) {
	return nil, nil, c.notConfigured()
}
