package services

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"path/filepath"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

type AWSServiceProvider interface {
	InitPresignClient(ctx context.Context) error
	PresignLink(ctx context.Context, bucketName string, fileName string) (string, error)
	UploadToPresignedURL(ctx context.Context, bucketName, url string, fileContent []byte) (string, int, error)
	GetPresignedR2FileReadURL(ctx context.Context, bucketName, fileKey string) (string, error)
	DeleteObject(ctx context.Context, bucketName, fileKey string) error
}

type AWSService struct {
	S3Client        *s3.Client
	S3PresignClient *s3.PresignClient
}

func (awsService *AWSService) InitPresignClient(ctx context.Context) error {
	var accountId = GetEnv("R2_ACCOUNT_ID", "")
	var accessKeyId = GetEnv("R2_ACCESS_KEY_ID", "")
	var accessKeySecret = GetEnv("R2_ACCESS_KEY_SECRET", "")
	r2Resolver := aws.EndpointResolverWithOptionsFunc(func(service, region string, options ...interface{}) (aws.Endpoint, error) {
		return aws.Endpoint{
			URL: fmt.Sprintf("https://%s.r2.cloudflarestorage.com", accountId),
		}, nil
	})
	cfg, err := config.LoadDefaultConfig(context.TODO(),
		config.WithEndpointResolverWithOptions(r2Resolver),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(accessKeyId, accessKeySecret, "")),
	)
	if err != nil {
		log.Fatalf("unable to load SDK config, %v", err)
	}

	s3Client := s3.NewFromConfig(cfg)

	awsService.S3Client = s3Client
	awsService.S3PresignClient = s3.NewPresignClient(s3Client)
	return err
}

func (awsService *AWSService) PresignLink(ctx context.Context, bucketName string, fileName string) (string, error) {
	request, err := awsService.S3PresignClient.PresignPutObject(context.TODO(), &s3.PutObjectInput{Bucket: &bucketName, Key: &fileName})
	return request.URL, err
}

func (awsService *AWSService) GetPresignedR2FileReadURL(ctx context.Context, bucketName, fileKey string) (string, error) {
	presignedGetRequest, err := awsService.S3PresignClient.PresignGetObject(context.TODO(), &s3.GetObjectInput{
		Bucket: aws.String(bucketName),
		Key:    aws.String(fileKey),
	})
	if err != nil {
		return "", fmt.Errorf("failed to presign request: %v", err)
	}

	return presignedGetRequest.URL, nil
}

func (awsService *AWSService) DeleteObject(ctx context.Context, bucketName, fileKey string) error {
	_, err := awsService.S3Client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(bucketName),
		Key:    aws.String(fileKey),
	})
	return err
}

func (awsService *AWSService) UploadToPresignedURL(ctx context.Context, bucketName, url string, fileContent []byte) (string, int, error) {
	mimeType := http.DetectContentType(fileContent)
	fmt.Println("Detected MIME type:", mimeType)
	if !allowedUploadMimeTypes[mimeType] {
		return "", 0, fmt.Errorf("unsupported file type: %s", mimeType)
	}

	body := bytes.NewReader(fileContent)

	req, err := http.NewRequest("PUT", url, body)
	if err != nil {
		fmt.Printf("Error creating request: %v\n", err)
		return "", 0, err
	}

	req.Header.Set("Content-Type", mimeType)

	client := &http.Client{}
	resp, err := client.Do(req)
	if err != nil {
		fmt.Printf("Error uploading file: %v\n", err)
		return "", 0, err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		fmt.Printf("Error reading response: %v\n", err)
		return "", resp.StatusCode, err
	}

	return string(respBody), resp.StatusCode, nil
}

// S3FileStore keeps uploads in an R2/S3 bucket behind presigned URLs.
// Read URLs go through the loadable cache so repeated renders of the same
// wardrobe do not re-presign every image.
type S3FileStore struct {
	AWS        AWSServiceProvider
	URLCache   URLCacheServiceProvider
	BucketName string
}

func NewS3FileStore(ctx context.Context, bucketName string) (*S3FileStore, error) {
	awsService := &AWSService{}
	if err := awsService.InitPresignClient(ctx); err != nil {
		return nil, err
	}
	urlCache, err := NewURLCacheService(awsService, bucketName)
	if err != nil {
		return nil, err
	}
	return &S3FileStore{
		AWS:        awsService,
		URLCache:   urlCache,
		BucketName: bucketName,
	}, nil
}

func (s *S3FileStore) Save(fileName string, content []byte) (string, error) {
	key, err := clothFileName(fileName, content)
	if err != nil {
		return "", err
	}
	uploadURL, err := s.AWS.PresignLink(context.TODO(), s.BucketName, key)
	if err != nil {
		return "", err
	}
	_, status, err := s.AWS.UploadToPresignedURL(context.TODO(), s.BucketName, uploadURL, content)
	if err != nil {
		return "", err
	}
	if status < 200 || status > 299 {
		return "", fmt.Errorf("upload to bucket failed with status %d", status)
	}
	return key, nil
}

// Open downloads the object to a temp file so the vision model can read it.
func (s *S3FileStore) Open(path string) (string, error) {
	url, err := s.ReadURL(context.TODO(), path)
	if err != nil {
		return "", err
	}
	content, err := ReadFileFromUrl(url)
	if err != nil {
		return "", err
	}
	return CreateTempFile(content, filepath.Base(path))
}

func (s *S3FileStore) ReadURL(ctx context.Context, path string) (string, error) {
	return s.URLCache.GetReadURL(ctx, path)
}

func (s *S3FileStore) Remove(path string) error {
	return s.AWS.DeleteObject(context.TODO(), s.BucketName, path)
}
