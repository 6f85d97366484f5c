package test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"

	"outfitapi/agent"
	"outfitapi/models"
	"outfitapi/services"
	"outfitapi/wardrobe"

	"google.golang.org/genai"
	"gorm.io/gorm"
)

func JsonString(model interface{}) string {
	bytes, _ := json.Marshal(model)
	return string(bytes)
}

func NewJSONRequest(method string, target string, param interface{}) *http.Request {

	req := httptest.NewRequest(method, target, strings.NewReader(JsonString(param)))
	req.Header.Add("Content-Type", "application/json")
	req.Header.Add("Accept", "application/json")
	return req
}

func NewUploadRequest(target string, fieldName string, fileName string, content []byte) *http.Request {
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, _ := writer.CreateFormFile(fieldName, fileName)
	part.Write(content)
	writer.Close()

	req := httptest.NewRequest("POST", target, body)
	req.Header.Add("Content-Type", writer.FormDataContentType())
	return req
}

// LLMMock returns a canned vision analysis without touching the network.
type LLMMock struct {
	Analysis string
	Err      error
}

func (mock LLMMock) AnalyzeClothing(ctx context.Context, filePath string, modelName services.LLMModelName) (*services.LLMResponse, error) {
	if mock.Err != nil {
		return nil, mock.Err
	}
	analysis := mock.Analysis
	if analysis == "" {
		analysis = `{"type": ["shirt"], "color": ["blue"], "category": ["top"], "occasion": ["casual"], "style": ["basic"]}`
	}
	return &services.LLMResponse{Response: analysis, IsTest: true}, nil
}

// StepClientMock replays a scripted sequence of agent steps.
type StepClientMock struct {
	Script []agent.StepResult
	Calls  int
	// transcript lengths seen per step, for loop assertions
	TranscriptSizes []int
}

func (mock *StepClientMock) Step(ctx context.Context, system string, transcript []agent.Turn, decls []*genai.FunctionDeclaration) (*agent.StepResult, error) {
	mock.TranscriptSizes = append(mock.TranscriptSizes, len(transcript))
	if mock.Calls >= len(mock.Script) {
		return nil, fmt.Errorf("step client script exhausted after %d steps", mock.Calls)
	}
	result := mock.Script[mock.Calls]
	mock.Calls++
	return &result, nil
}

// FileStoreMock keeps files in memory.
type FileStoreMock struct {
	Files   map[string][]byte
	Removed []string
	counter int
}

func NewFileStoreMock() *FileStoreMock {
	return &FileStoreMock{Files: map[string][]byte{}}
}

func (mock *FileStoreMock) Save(fileName string, content []byte) (string, error) {
	mock.counter++
	path := fmt.Sprintf("uploads/cloth_test_%d.jpg", mock.counter)
	mock.Files[path] = content
	return path, nil
}

func (mock *FileStoreMock) Open(path string) (string, error) {
	if _, ok := mock.Files[path]; !ok {
		return "", fmt.Errorf("stored file %s not found", path)
	}
	return path, nil
}

func (mock *FileStoreMock) ReadURL(ctx context.Context, path string) (string, error) {
	return "/" + path, nil
}

func (mock *FileStoreMock) Remove(path string) error {
	delete(mock.Files, path)
	mock.Removed = append(mock.Removed, path)
	return nil
}

// FakeClothingItem creates an item with a single type and occasion tag.
func FakeClothingItem(db *gorm.DB, garmentType string, color string, occasion string) *models.ClothingItem {
	store := wardrobe.NewStore(db)
	item, err := store.SaveItem(
		fmt.Sprintf("uploads/cloth_fake_%s_%s_%s.jpg", garmentType, color, occasion),
		nil,
		map[string][]string{
			"type":     {garmentType},
			"color":    {color},
			"occasion": {occasion},
		},
	)
	if err != nil {
		panic(err)
	}
	return item
}
