package zoo

import (
	"context"
	"fmt"
	"time"

	xhttp "PolyWatch/pkg/http"
)

// RemoteModel delegates scoring to an external model service over HTTP. It
// lets a separately trained model participate in the ensemble without linking
// it into the process.
type RemoteModel struct {
	ModelName string
	baseURL   string
	client    *xhttp.Client
}

func NewRemoteModel(name, baseURL string, timeout time.Duration) *RemoteModel {
	if timeout <= 0 {
		timeout = 3 * time.Second
	}
	return &RemoteModel{
		ModelName: name,
		baseURL:   baseURL,
		client:    xhttp.NewClient(xhttp.WithTimeout(timeout)),
	}
}

func (m *RemoteModel) Name() string { return m.ModelName }

type scoreReq struct {
	Model    string             `json:"model"`
	Features map[string]float64 `json:"features"`
}

type scoreResp struct {
	Score float64 `json:"score"`
}

func (m *RemoteModel) PredictProba(ctx context.Context, feats map[string]float64) (float64, error) {
	var sr scoreResp
	err := m.client.SendAndParse(ctx, &xhttp.RequestOptions{
		Method:  xhttp.MethodPost,
		URL:     m.baseURL + "/score",
		Headers: map[string]string{"Content-Type": "application/json"},
		Body:    scoreReq{Model: m.ModelName, Features: feats},
	}, &sr)
	if err != nil {
		return 0, fmt.Errorf("post score: %w", err)
	}
	return sr.Score, nil
}
