package activity

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"api/internal/models"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/mapping"
	"github.com/blevesearch/bleve/v2/search/query"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const schemaVersion = "1"

var schemaVersionKey = []byte("schema_version")

// FilesystemActivityEntry is the document shape indexed in bleve.
type FilesystemActivityEntry struct {
	Message    string    `json:"message"`
	Timestamp  time.Time `json:"timestamp"`
	Action     string    `json:"action"`
	ObjectType string    `json:"object_type"`
	UserID     string    `json:"user_id"`
	Method     string    `json:"method"`
	Object     string    `json:"object"`
}

// FilesystemClient implements IActivityLogger over a local bleve index.
type FilesystemClient struct {
	index bleve.Index
}

// NewFilesystemClient opens (or creates) the bleve index at the configured
// directory. An index with a different schema version is discarded and
// rebuilt; the audit trail is advisory, not a system of record.
func NewFilesystemClient(config models.ActivityConfiguration) IActivityLogger {
	dir := config.Filesystem.Directory

	index, err := bleve.Open(dir)
	if err != nil {
		return &FilesystemClient{index: createIndex(dir)}
	}

	storedVersion, err := index.GetInternal(schemaVersionKey)
	if err != nil {
		zap.L().Fatal("Failed to get activity schema version", zap.Error(err))
	}

	if string(storedVersion) != schemaVersion {
		zap.L().Warn("Activity schema version mismatch, rebuilding index",
			zap.String("old_version", string(storedVersion)),
			zap.String("new_version", schemaVersion),
		)
		if err = index.Close(); err != nil {
			zap.L().Fatal("Failed to close outdated activity index", zap.Error(err))
		}
		if err = os.RemoveAll(dir); err != nil {
			zap.L().Fatal("Failed to remove outdated activity index", zap.Error(err))
		}
		return &FilesystemClient{index: createIndex(dir)}
	}

	return &FilesystemClient{index: index}
}

func createIndex(dir string) bleve.Index {
	index, err := bleve.New(dir, buildIndexMapping())
	if err != nil {
		zap.L().Fatal("Failed to create filesystem activity index", zap.Error(err))
	}
	if err = index.SetInternal(schemaVersionKey, []byte(schemaVersion)); err != nil {
		zap.L().Fatal("Failed to set activity schema version", zap.Error(err))
	}
	return index
}

func buildIndexMapping() *mapping.IndexMappingImpl {
	keywordMapping := bleve.NewKeywordFieldMapping()
	dateMapping := bleve.NewDateTimeFieldMapping()
	textMapping := bleve.NewTextFieldMapping()

	disabledMapping := bleve.NewTextFieldMapping()
	disabledMapping.Index = false
	disabledMapping.Store = true

	docMapping := bleve.NewDocumentMapping()
	docMapping.AddFieldMappingsAt("action", keywordMapping)
	docMapping.AddFieldMappingsAt("object_type", keywordMapping)
	docMapping.AddFieldMappingsAt("user_id", keywordMapping)
	docMapping.AddFieldMappingsAt("method", keywordMapping)
	docMapping.AddFieldMappingsAt("timestamp", dateMapping)
	docMapping.AddFieldMappingsAt("message", textMapping)
	docMapping.AddFieldMappingsAt("object", disabledMapping)

	indexMapping := bleve.NewIndexMapping()
	indexMapping.DefaultMapping = docMapping

	return indexMapping
}

func (c *FilesystemClient) Close() error {
	return c.index.Close()
}

func (c *FilesystemClient) Send(entry models.Activity) error {
	var objectJSON string
	if entry.Object != nil {
		b, err := json.Marshal(entry.Object)
		if err != nil {
			return fmt.Errorf("failed to marshal activity object: %w", err)
		}
		objectJSON = string(b)
	}

	doc := FilesystemActivityEntry{
		Message:    entry.Message,
		Timestamp:  time.Now(),
		Action:     entry.Filter["action"],
		ObjectType: entry.Filter["object_type"],
		UserID:     entry.Filter["user_id"],
		Method:     entry.Filter["method"],
		Object:     objectJSON,
	}

	if err := c.index.Index(uuid.New().String(), doc); err != nil {
		return fmt.Errorf("failed to index activity: %w", err)
	}
	return nil
}

// Search returns matching entries from the last 30 days, most recent first.
func (c *FilesystemClient) Search(searchCriteria map[string][]string) ([]map[string]any, error) {
	criteriaQuery := buildBleveQuery(searchCriteria)

	now := time.Now()
	dateQuery := bleve.NewDateRangeQuery(now.AddDate(0, 0, -30), now)
	dateQuery.SetField("timestamp")

	searchRequest := bleve.NewSearchRequest(bleve.NewConjunctionQuery(criteriaQuery, dateQuery))
	searchRequest.Size = 100
	searchRequest.SortBy([]string{"-timestamp"})
	searchRequest.Fields = []string{"*"}

	result, err := c.index.Search(searchRequest)
	if err != nil {
		return nil, fmt.Errorf("failed to search activity: %w", err)
	}

	var activities []map[string]any
	for _, hit := range result.Hits {
		entry := map[string]any{}
		for _, field := range []string{"action", "object_type", "user_id", "method", "message", "timestamp"} {
			if v, ok := hit.Fields[field].(string); ok {
				entry[field] = v
			}
		}

		if objectStr, _ := hit.Fields["object"].(string); objectStr != "" {
			var objectMap map[string]any
			if json.Unmarshal([]byte(objectStr), &objectMap) == nil {
				entry["object"] = objectMap
			}
		}

		activities = append(activities, entry)
	}

	return activities, nil
}

// CountByDay aggregates matching entries into daily buckets via a bleve
// date-range facet. Days with no matches are omitted.
func (c *FilesystemClient) CountByDay(searchCriteria map[string][]string, days int) ([]models.TimeSeriesPoint, error) {
	criteriaQuery := buildBleveQuery(searchCriteria)

	now := time.Now()
	dateQuery := bleve.NewDateRangeQuery(now.AddDate(0, 0, -days), now)
	dateQuery.SetField("timestamp")

	searchRequest := bleve.NewSearchRequest(bleve.NewConjunctionQuery(criteriaQuery, dateQuery))
	searchRequest.Size = 0

	facet := bleve.NewFacetRequest("timestamp", days+1)
	for i := days; i >= 0; i-- {
		dayStart := now.AddDate(0, 0, -i).Truncate(24 * time.Hour)
		facet.AddDateTimeRange(dayStart.Format("2006-01-02"), dayStart, dayStart.Add(24*time.Hour))
	}
	searchRequest.AddFacet("daily_counts", facet)

	result, err := c.index.Search(searchRequest)
	if err != nil {
		return nil, fmt.Errorf("failed to count activity by day: %w", err)
	}

	dailyFacet, ok := result.Facets["daily_counts"]
	if !ok {
		return []models.TimeSeriesPoint{}, nil
	}

	points := make([]models.TimeSeriesPoint, 0, len(dailyFacet.DateRanges))
	for _, dr := range dailyFacet.DateRanges {
		if dr.Count > 0 {
			date, parseErr := time.Parse("2006-01-02", dr.Name)
			if parseErr != nil {
				continue
			}
			points = append(points, models.TimeSeriesPoint{
				Date:  date,
				Count: dr.Count,
			})
		}
	}

	return points, nil
}

func buildBleveQuery(searchCriteria map[string][]string) query.Query {
	var queries []query.Query

	for key, values := range searchCriteria {
		switch {
		case len(values) == 1:
			termQuery := bleve.NewTermQuery(values[0])
			termQuery.SetField(key)
			queries = append(queries, termQuery)
		case len(values) > 1:
			var termQueries []query.Query
			for _, v := range values {
				tq := bleve.NewTermQuery(v)
				tq.SetField(key)
				termQueries = append(termQueries, tq)
			}
			disjunction := bleve.NewDisjunctionQuery(termQueries...)
			disjunction.SetMin(1)
			queries = append(queries, disjunction)
		}
	}

	if len(queries) == 0 {
		return bleve.NewMatchAllQuery()
	}
	if len(queries) == 1 {
		return queries[0]
	}
	return bleve.NewConjunctionQuery(queries...)
}
