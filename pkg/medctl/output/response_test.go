package output

import (
	"bytes"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/meditracker/medctl/pkg/medctl/client"
)

func TestWriteResponse(t *testing.T) {
	jsonHeader := http.Header{"Content-Type": []string{"application/json"}}
	tests := []struct {
		name string
		resp *client.Response
		want string
	}{
		{
			name: "json body is pretty printed",
			resp: &client.Response{
				StatusCode: http.StatusCreated,
				Reason:     "Created",
				URL:        "http://localhost:8080/api/medicines",
				Header:     jsonHeader,
				Body:       []byte(`{"id":1,"name":"Aspirin","dosageAmount":500.0}`),
			},
			want: "Status: 201 Created\n" +
				"URL: http://localhost:8080/api/medicines\n" +
				"Response:\n" +
				"{\n  \"id\": 1,\n  \"name\": \"Aspirin\",\n  \"dosageAmount\": 500.0\n}\n",
		},
		{
			name: "declared json that does not parse",
			resp: &client.Response{
				StatusCode: http.StatusOK,
				Reason:     "OK",
				URL:        "http://localhost:8080/api/medicines",
				Header:     jsonHeader,
				Body:       []byte(`{"broken"`),
			},
			want: "Status: 200 OK\nURL: http://localhost:8080/api/medicines\nResponse (not JSON):\n{\"broken\"\n",
		},
		{
			name: "empty non-json body",
			resp: &client.Response{
				StatusCode: http.StatusNoContent,
				Reason:     "No Content",
				URL:        "http://localhost:8080/api/medicines/1",
				Header:     http.Header{},
			},
			want: "Status: 204 No Content\nURL: http://localhost:8080/api/medicines/1\nResponse:\n(Empty)\n",
		},
		{
			name: "plain text body",
			resp: &client.Response{
				StatusCode: http.StatusInternalServerError,
				Reason:     "Internal Server Error",
				URL:        "http://localhost:8080/api/medicines",
				Header:     http.Header{"Content-Type": []string{"text/plain"}},
				Body:       []byte("database unavailable"),
			},
			want: "Status: 500 Internal Server Error\nURL: http://localhost:8080/api/medicines\nResponse:\ndatabase unavailable\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := &bytes.Buffer{}
			WriteResponse(buf, tt.resp)
			assert.Equal(t, tt.want, buf.String())
		})
	}
}
