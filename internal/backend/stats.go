package backend

import (
	"context"

	"github.com/simp-lee/rentfront/internal/domain"
)

type statsResponse struct {
	Stats domain.DashboardStats `json:"stats"`
}

type statsRepository struct {
	client *Client
}

// NewStatsRepository returns a domain.StatsRepository served by the backend.
func NewStatsRepository(c *Client) domain.StatsRepository {
	return &statsRepository{client: c}
}

func (r *statsRepository) Stats(ctx context.Context) (*domain.DashboardStats, error) {
	var resp statsResponse
	if err := r.client.get(ctx, "GET /admin/stats", "/admin/stats", nil, &resp); err != nil {
		return nil, err
	}
	return &resp.Stats, nil
}
