package service

import (
	"context"
	"fmt"
	"os"
	"time"

	"inkpress/internal/types"
	"inkpress/internal/version"
)

// HealthCheck reports the state of the site directory and the git repository
func (s *Service) HealthCheck(ctx context.Context) *types.HealthStatus {
	status := &types.HealthStatus{
		Healthy:   true,
		Timestamp: time.Now(),
		Version:   version.GetInfo().Version,
		StartTime: s.startTime,
		Uptime:    time.Since(s.startTime).Round(time.Second).String(),
	}

	check := func(name string, err error, msg string) {
		c := types.ComponentStatus{
			Name:      name,
			Status:    "healthy",
			Message:   msg,
			LastCheck: time.Now(),
		}
		if err != nil {
			status.Healthy = false
			c.Status = "unhealthy"
			c.Error = err.Error()
		}
		status.Details = append(status.Details, c)
	}

	root := s.config.Site.Root
	info, err := os.Stat(root)
	if err == nil && !info.IsDir() {
		err = fmt.Errorf("%s is not a directory", root)
	}
	check("site", err, root)

	check("git", s.publisher.Check(ctx), "")

	posts, err := s.content.List()
	check("content", err, fmt.Sprintf("Posts: %d", len(posts)))

	return status
}
