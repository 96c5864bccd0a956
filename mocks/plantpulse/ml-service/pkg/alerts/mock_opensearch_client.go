package alerts

import (
	"github.com/opensearch-project/opensearch-go/v4/opensearchapi"
	"github.com/stretchr/testify/mock"

	"plantpulse/common/dto"
)

// MockElasticClientInterface is a mock implementation for the ElasticClientInterface interface
type MockElasticClientInterface struct {
	mock.Mock
}

func (m *MockElasticClientInterface) SearchAnomalyEvents(luceneQuery string) ([]*dto.AnomalyEvent, error) {
	args := m.Called(luceneQuery)
	var res []*dto.AnomalyEvent
	if args.Get(0) != nil {
		res = args.Get(0).([]*dto.AnomalyEvent)
	}
	return res, args.Error(1)
}

func (m *MockElasticClientInterface) Search(luceneQuery string, indexName string) (map[string]interface{}, error) {
	args := m.Called(luceneQuery, indexName)
	var res map[string]interface{}
	if args.Get(0) != nil {
		res = args.Get(0).(map[string]interface{})
	}
	return res, args.Error(1)
}

func (m *MockElasticClientInterface) IndexAnomalyEvent(event *dto.AnomalyEvent) error {
	args := m.Called(event)
	return args.Error(0)
}

func (m *MockElasticClientInterface) Index(req opensearchapi.IndexReq) error {
	args := m.Called(req)
	return args.Error(0)
}

func (m *MockElasticClientInterface) ConvertToAnomalyEvents(result map[string]interface{}) ([]*dto.AnomalyEvent, error) {
	args := m.Called(result)
	var res []*dto.AnomalyEvent
	if args.Get(0) != nil {
		res = args.Get(0).([]*dto.AnomalyEvent)
	}
	return res, args.Error(1)
}

func (m *MockElasticClientInterface) BuildSearchRequest(luceneQuery string, indexName string) opensearchapi.SearchReq {
	args := m.Called(luceneQuery, indexName)
	var res opensearchapi.SearchReq
	if args.Get(0) != nil {
		res = args.Get(0).(opensearchapi.SearchReq)
	}
	return res
}
