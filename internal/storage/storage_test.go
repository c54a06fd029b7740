package storage

import (
	"context"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPresignPut_PathStyleEndpoint(t *testing.T) {
	p, err := New(context.Background(), Options{
		Bucket:    "pictures",
		Region:    "us-east-1",
		Endpoint:  "http://127.0.0.1:9000/",
		AccessKey: "minio",
		SecretKey: "minio-secret",
	})
	require.NoError(t, err)

	up, err := p.PresignPut(context.Background(), "profile-pictures/user_1/a.png", "image/png")
	require.NoError(t, err)

	u, err := url.Parse(up.URL)
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:9000", u.Host)
	assert.Equal(t, "/pictures/profile-pictures/user_1/a.png", u.Path)
	assert.NotEmpty(t, u.Query().Get("X-Amz-Signature"))
	assert.Equal(t, "900", u.Query().Get("X-Amz-Expires"))

	assert.Equal(t, 900, up.ExpiresIn)
	assert.Equal(t, "http://127.0.0.1:9000/pictures/profile-pictures/user_1/a.png", up.PublicURL)
}

func TestPublicURL_AWS(t *testing.T) {
	p, err := New(context.Background(), Options{
		Bucket:    "holy-pics",
		Region:    "eu-west-1",
		AccessKey: "ak",
		SecretKey: "sk",
	})
	require.NoError(t, err)
	assert.Equal(t, "https://holy-pics.s3.eu-west-1.amazonaws.com/a%20b.png", p.PublicURL("a b.png"))
}
