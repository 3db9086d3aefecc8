package dto

import "github.com/pawel-madurski/PredictionIO/pkg/engine"

type QueryRequest struct {
	User string `json:"user"`
	Num  int    `json:"num"`
}

type QueryResponse struct {
	Success    bool               `json:"success"`
	Message    string             `json:"message,omitempty"`
	Algorithm  string             `json:"algorithm,omitempty"`
	ItemScores []engine.ItemScore `json:"itemScores,omitempty"`
}

type TrainResponse struct {
	Success    bool   `json:"success"`
	Message    string `json:"message,omitempty"`
	InstanceID string `json:"instanceId,omitempty"`
}

type DeployRequest struct {
	InstanceID string `json:"instanceId"`
}

type DeployResponse struct {
	Success    bool   `json:"success"`
	Message    string `json:"message,omitempty"`
	InstanceID string `json:"instanceId,omitempty"`
}

type InstanceInfo struct {
	ID         string   `json:"id"`
	Status     string   `json:"status"`
	Algorithms []string `json:"algorithms"`
	CreatedAt  string   `json:"createdAt"`
}

type StatusResponse struct {
	Success   bool           `json:"success"`
	Message   string         `json:"message,omitempty"`
	Current   string         `json:"current"`
	Loaded    string         `json:"loaded"`
	Instances []InstanceInfo `json:"instances"`
}
