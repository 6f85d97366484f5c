package agent

import (
	"context"
	"encoding/json"
	"fmt"

	"outfitapi/services"
	"outfitapi/wardrobe"

	"google.golang.org/genai"
)

// Tool binds one function declaration to its implementation.
type Tool struct {
	Name        string
	Declaration *genai.FunctionDeclaration
	Run         func(ctx context.Context, args map[string]any) (string, error)
}

// Registry holds the wardrobe tools exposed to the model.
type Registry struct {
	tools map[string]*Tool
	order []string
}

func (r *Registry) add(tool *Tool) {
	r.tools[tool.Name] = tool
	r.order = append(r.order, tool.Name)
}

func (r *Registry) Declarations() []*genai.FunctionDeclaration {
	decls := make([]*genai.FunctionDeclaration, 0, len(r.order))
	for _, name := range r.order {
		decls = append(decls, r.tools[name].Declaration)
	}
	return decls
}

func (r *Registry) Run(ctx context.Context, call *ToolCall) (string, error) {
	tool, ok := r.tools[call.Name]
	if !ok {
		return "", fmt.Errorf("unknown tool: %s", call.Name)
	}
	return tool.Run(ctx, call.Args)
}

func argString(args map[string]any, key string) string {
	value, _ := args[key].(string)
	return value
}

// argIDs tolerates the number shapes JSON decoding produces.
func argIDs(args map[string]any, key string) []uint {
	raw, ok := args[key].([]any)
	if !ok {
		return nil
	}
	ids := make([]uint, 0, len(raw))
	for _, entry := range raw {
		switch v := entry.(type) {
		case float64:
			ids = append(ids, uint(v))
		case int:
			ids = append(ids, uint(v))
		case int64:
			ids = append(ids, uint(v))
		}
	}
	return ids
}

// tagCategories are the attribute keys the vision model emits and the
// filters the query tools accept.
var tagCategories = []string{"type", "color", "category", "occasion", "style"}

func argTags(args map[string]any, key string) map[string][]string {
	raw, ok := args[key].(map[string]any)
	if !ok {
		return nil
	}
	tags := map[string][]string{}
	for category, value := range raw {
		switch v := value.(type) {
		case string:
			if v != "" {
				tags[category] = append(tags[category], v)
			}
		case []any:
			for _, entry := range v {
				if s, ok := entry.(string); ok && s != "" {
					tags[category] = append(tags[category], s)
				}
			}
		}
	}
	return tags
}

// tagListSchema: one list of values per category, the shape save expects.
func tagListSchema(description string) *genai.Schema {
	properties := map[string]*genai.Schema{}
	for _, category := range tagCategories {
		properties[category] = &genai.Schema{
			Type:  genai.TypeArray,
			Items: &genai.Schema{Type: genai.TypeString},
		}
	}
	return &genai.Schema{
		Type:        genai.TypeObject,
		Description: description,
		Properties:  properties,
	}
}

// filterSchema: one exact-match value per category, the shape queries expect.
func filterSchema(description string) *genai.Schema {
	properties := map[string]*genai.Schema{}
	for _, category := range tagCategories {
		properties[category] = &genai.Schema{Type: genai.TypeString}
	}
	return &genai.Schema{
		Type:        genai.TypeObject,
		Description: description,
		Properties:  properties,
	}
}

// NewRegistry wires the seven wardrobe tools over the store, the vision
// model and the file store.
func NewRegistry(store *wardrobe.Store, llm services.LLMProvider, files services.FileStoreProvider) *Registry {
	r := &Registry{tools: map[string]*Tool{}}

	r.add(&Tool{
		Name: "analyze_clothing_image",
		Declaration: &genai.FunctionDeclaration{
			Name:        "analyze_clothing_image",
			Description: "Analyze a clothing photo already in the wardrobe store and return its attributes (type, color, material, occasion, description) as JSON.",
			Parameters: &genai.Schema{
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"image_path": {Type: genai.TypeString, Description: "Stored image path of the photo to analyze."},
				},
				Required: []string{"image_path"},
			},
		},
		Run: func(ctx context.Context, args map[string]any) (string, error) {
			localPath, err := files.Open(argString(args, "image_path"))
			if err != nil {
				return "", err
			}
			response, err := llm.AnalyzeClothing(ctx, localPath, services.Flash25)
			if err != nil {
				return "", err
			}
			return response.Response, nil
		},
	})

	r.add(&Tool{
		Name: "save_clothing_item",
		Declaration: &genai.FunctionDeclaration{
			Name:        "save_clothing_item",
			Description: "Save a clothing item with its tags into the wardrobe. The image must already be uploaded.",
			Parameters: &genai.Schema{
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"image_path": {Type: genai.TypeString},
					"name":       {Type: genai.TypeString, Description: "Optional display name."},
					"tags":       tagListSchema("Tag values per category, e.g. {\"type\": [\"jacket\"], \"color\": [\"blue\"]}."),
				},
				Required: []string{"image_path", "tags"},
			},
		},
		Run: func(ctx context.Context, args map[string]any) (string, error) {
			item, err := store.SaveItem(
				argString(args, "image_path"),
				services.StrPointer(argString(args, "name")),
				argTags(args, "tags"),
			)
			if err != nil {
				return "", err
			}
			return fmt.Sprintf("Saved clothing item with ID %d", item.ID), nil
		},
	})

	r.add(&Tool{
		Name: "query_wardrobe",
		Declaration: &genai.FunctionDeclaration{
			Name:        "query_wardrobe",
			Description: "Query wardrobe items by tag filters. All given filters must match. Omit all filters to list everything.",
			Parameters:  filterSchema("Each property is an optional exact-match filter."),
		},
		Run: func(ctx context.Context, args map[string]any) (string, error) {
			filters := wardrobe.TagFilter{}
			for _, category := range tagCategories {
				if value := argString(args, category); value != "" {
					filters[category] = value
				}
			}
			items, err := store.Query(filters)
			if err != nil {
				return "", err
			}
			return wardrobe.RenderItems(items), nil
		},
	})

	r.add(&Tool{
		Name: "generate_outfit_recommendation",
		Declaration: &genai.FunctionDeclaration{
			Name:        "generate_outfit_recommendation",
			Description: "Fetch wardrobe items suitable for an occasion. Falls back to the whole wardrobe when no item is tagged for it.",
			Parameters: &genai.Schema{
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"occasion": {Type: genai.TypeString, Description: "Occasion such as casual, formal, business, sport, party."},
				},
				Required: []string{"occasion"},
			},
		},
		Run: func(ctx context.Context, args map[string]any) (string, error) {
			items, err := store.QueryByOccasion(argString(args, "occasion"))
			if err != nil {
				return "", err
			}
			return wardrobe.RenderItems(items), nil
		},
	})

	r.add(&Tool{
		Name: "save_outfit",
		Declaration: &genai.FunctionDeclaration{
			Name:        "save_outfit",
			Description: "Save an outfit as an ordered list of clothing item IDs.",
			Parameters: &genai.Schema{
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"name":         {Type: genai.TypeString},
					"clothing_ids": {Type: genai.TypeArray, Items: &genai.Schema{Type: genai.TypeInteger}},
					"occasion":     {Type: genai.TypeString},
				},
				Required: []string{"name", "clothing_ids"},
			},
		},
		Run: func(ctx context.Context, args map[string]any) (string, error) {
			outfit, err := store.SaveOutfit(
				argString(args, "name"),
				argIDs(args, "clothing_ids"),
				argString(args, "occasion"),
			)
			if err != nil {
				return "", err
			}
			return fmt.Sprintf("Saved outfit %q with ID %d", outfit.Name, outfit.ID), nil
		},
	})

	r.add(&Tool{
		Name: "get_all_clothes",
		Declaration: &genai.FunctionDeclaration{
			Name:        "get_all_clothes",
			Description: "List every clothing item in the wardrobe with its tags.",
			Parameters:  &genai.Schema{Type: genai.TypeObject, Properties: map[string]*genai.Schema{}},
		},
		Run: func(ctx context.Context, args map[string]any) (string, error) {
			items, err := store.Query(nil)
			if err != nil {
				return "", err
			}
			return wardrobe.RenderItems(items), nil
		},
	})

	r.add(&Tool{
		Name: "get_saved_outfits",
		Declaration: &genai.FunctionDeclaration{
			Name:        "get_saved_outfits",
			Description: "List previously saved outfits with their member items.",
			Parameters:  &genai.Schema{Type: genai.TypeObject, Properties: map[string]*genai.Schema{}},
		},
		Run: func(ctx context.Context, args map[string]any) (string, error) {
			outfits, err := store.ListOutfits()
			if err != nil {
				return "", err
			}
			rendered, err := json.Marshal(outfits)
			if err != nil {
				return "", err
			}
			return string(rendered), nil
		},
	})

	return r
}
