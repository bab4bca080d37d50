package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/invopop/jsonschema"

	"propchat/internal/cache"
	"propchat/internal/logging"
	"propchat/internal/model"
	"propchat/internal/utils"
)

const searchToolDescription = "Busca propiedades inmobiliarias disponibles en Venezuela según los criterios del cliente. " +
	"Todos los parámetros son opcionales; usa solo los que el cliente haya mencionado."

// storeUnavailableMessage is the error marker the model sees when the store fails
const storeUnavailableMessage = "store unavailable"

// ResultCache stores search results between requests
type ResultCache interface {
	Get(ctx context.Context, key string, dest any) (bool, error)
	Set(ctx context.Context, key string, value any) error
}

// Searcher runs a validated property search
type Searcher interface {
	Search(ctx context.Context, criteria *model.SearchCriteria) ([]model.PropertySummary, error)
}

// SearchTool is the capability the model may invoke during generation
type SearchTool interface {
	Definition() ToolDefinition
	Invoke(ctx context.Context, call model.ToolCallRequest) (model.ToolCallResult, error)
}

// PropertySearchTool bridges searchProperties calls to the search service
type PropertySearchTool struct {
	searcher    Searcher
	cache       ResultCache
	cachePrefix string
	definition  ToolDefinition
}

// NewPropertySearchTool creates the searchProperties capability.
// cache may be nil.
func NewPropertySearchTool(searcher Searcher, cache ResultCache, cachePrefix string) *PropertySearchTool {
	return &PropertySearchTool{
		searcher:    searcher,
		cache:       cache,
		cachePrefix: cachePrefix,
		definition: ToolDefinition{
			Name:        model.SearchPropertiesTool,
			Description: searchToolDescription,
			Parameters:  criteriaSchema(),
		},
	}
}

// Definition returns the name, description and argument schema advertised to the model
func (t *PropertySearchTool) Definition() ToolDefinition {
	return t.definition
}

// Invoke executes one tool call. A non-nil error wraps ErrInvalidArguments and
// means the query was not run; the returned result still carries the error
// marker so it can be handed back to the model. Store failures are not errors
// here: they come back as a failed result.
func (t *PropertySearchTool) Invoke(ctx context.Context, call model.ToolCallRequest) (model.ToolCallResult, error) {
	if call.Name != model.SearchPropertiesTool {
		err := fmt.Errorf("%w: unknown tool %q", ErrInvalidArguments, call.Name)
		return model.FailedToolCallResult(err.Error()), err
	}

	criteria, err := ParseSearchCriteria(call.Arguments)
	if err != nil {
		return model.FailedToolCallResult(err.Error()), err
	}

	return t.search(ctx, criteria), nil
}

func (t *PropertySearchTool) search(ctx context.Context, criteria *model.SearchCriteria) model.ToolCallResult {
	logger := logging.FromContext(ctx)
	if criteria.PropertyType != nil && !utils.IsKnownPropertyType(*criteria.PropertyType) {
		logger.Debug("property type outside stored vocabulary", "property_type", *criteria.PropertyType)
	}

	key := cache.QueryKey(t.cachePrefix, criteria.Params())
	if t.cache != nil {
		var cached model.ToolCallResult
		found, err := t.cache.Get(ctx, key, &cached)
		if err != nil {
			logger.Warn("search cache read failed", "error", err)
		} else if found {
			logger.Debug("search cache hit", "key", key)
			return model.NewToolCallResult(cached.Properties)
		}
	}

	properties, err := t.searcher.Search(ctx, criteria)
	if err != nil {
		if errors.Is(err, ErrStoreUnavailable) {
			logger.Error("property search failed", "error", err)
		}
		return model.FailedToolCallResult(storeUnavailableMessage)
	}

	result := model.NewToolCallResult(properties)
	if t.cache != nil {
		if err := t.cache.Set(ctx, key, result); err != nil {
			logger.Warn("search cache write failed", "error", err)
		}
	}
	return result
}

// criteriaSchema reflects SearchCriteria into the JSON schema object the
// providers expect as tool parameters
func criteriaSchema() map[string]any {
	reflector := jsonschema.Reflector{
		AllowAdditionalProperties: false,
		DoNotReference:            true,
	}
	schema := reflector.Reflect(&model.SearchCriteria{})

	data, err := json.Marshal(schema)
	if err != nil {
		panic(fmt.Sprintf("reflect search criteria schema: %v", err))
	}
	var params map[string]any
	if err := json.Unmarshal(data, &params); err != nil {
		panic(fmt.Sprintf("decode search criteria schema: %v", err))
	}
	delete(params, "$schema")
	delete(params, "$id")
	return params
}
