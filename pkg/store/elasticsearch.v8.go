package store

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io/ioutil"
	"net/http"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/voidshard/ledgerview/pkg/domain"

	"github.com/cenkalti/backoff/v4"
	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
	"github.com/elastic/go-elasticsearch/v8/esutil"
	"github.com/rs/zerolog"
)

// from https://github.com/elastic/go-elasticsearch/blob/master/_examples/bulk/indexer.go

const (
	esIndex   = "ledgerview"
	esKVIndex = "ledgerview-state"
	esFlush   = 2048

	envEsAddr = "ELASTICSEARCH_SERVICE_HOST"
	envEsPort = "ELASTICSEARCH_SERVICE_PORT"
)

type ElasticsearchV8 struct {
	addresses []string
	log       zerolog.Logger

	once   sync.Once
	client *elasticsearch.Client
	err    error
}

// esDoc is how a key/value pair is held in the state index.
type esDoc struct {
	Value   string    `json:"value"`
	Updated time.Time `json:"updated"`
}

type esGetReply struct {
	Found  bool  `json:"found"`
	Source esDoc `json:"_source"`
}

func NewElasticsearchV8(log zerolog.Logger, urls ...string) *ElasticsearchV8 {
	if len(urls) == 0 {
		address := os.Getenv(envEsAddr)
		port := os.Getenv(envEsPort)
		if port == "" {
			port = "9200" // default port
		}
		if address == "" {
			address = "localhost" // default address
		}
		urls = []string{fmt.Sprintf("http://%s:%s", address, port)}
	}

	return &ElasticsearchV8{addresses: urls, log: log}
}

func (e *ElasticsearchV8) es() (*elasticsearch.Client, error) {
	e.once.Do(func() {
		retryBackoff := backoff.NewExponentialBackOff()

		e.client, e.err = elasticsearch.NewClient(elasticsearch.Config{
			Addresses: e.addresses,

			// Retry on 429 TooManyRequests statuses
			RetryOnStatus: []int{502, 503, 504, 429},

			RetryBackoff: func(i int) time.Duration {
				if i == 1 {
					retryBackoff.Reset()
				}
				return retryBackoff.NextBackOff()
			},

			MaxRetries: 5,
		})
	})
	return e.client, e.err
}

func (e *ElasticsearchV8) Put(key string, data []byte) error {
	es, err := e.es()
	if err != nil {
		return err
	}

	body, err := json.Marshal(&esDoc{Value: string(data), Updated: time.Now().UTC()})
	if err != nil {
		return err
	}

	res, err := es.Index(
		esKVIndex,
		bytes.NewReader(body),
		es.Index.WithDocumentID(key),
		es.Index.WithRefresh("true"),
		es.Index.WithContext(context.Background()),
	)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	return responseError(res)
}

func (e *ElasticsearchV8) Get(key string) ([]byte, error) {
	es, err := e.es()
	if err != nil {
		return nil, err
	}

	res, err := es.Get(esKVIndex, key, es.Get.WithContext(context.Background()))
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()

	if res.StatusCode == http.StatusNotFound {
		return nil, ErrNoKey
	}
	if err := responseError(res); err != nil {
		return nil, err
	}

	reply := &esGetReply{}
	err = json.NewDecoder(res.Body).Decode(reply)
	if err != nil {
		return nil, err
	}
	if !reply.Found {
		return nil, ErrNoKey
	}
	return []byte(reply.Source.Value), nil
}

func responseError(res *esapi.Response) error {
	if !res.IsError() {
		return nil
	}
	msg, _ := ioutil.ReadAll(res.Body)
	return fmt.Errorf("elasticsearch returned %s: %s", res.Status(), strings.TrimSpace(string(msg)))
}

// Write bulk indexes txns, one document per transaction.
func (e *ElasticsearchV8) Write(txns []*domain.Transaction) error {
	es, err := e.es()
	if err != nil {
		return err
	}

	bi, err := esutil.NewBulkIndexer(esutil.BulkIndexerConfig{
		Index:         esIndex,
		FlushBytes:    esFlush,
		Client:        es,
		NumWorkers:    4,
		FlushInterval: 10 * time.Second,
	})
	if err != nil {
		return err
	}

	res, err := es.Indices.Create(esIndex)
	if err != nil {
		e.log.Debug().Err(err).Str("index", esIndex).Msg("attempted to make index")
	} else {
		res.Body.Close()
	}

	for _, t := range txns {
		data, err := t.JSON()
		if err != nil {
			return err
		}

		err = bi.Add(
			context.Background(),
			esutil.BulkIndexerItem{
				Action:     "index",
				DocumentID: t.ID,
				Body:       bytes.NewReader(data),
				OnFailure: func(ctx context.Context, item esutil.BulkIndexerItem, res esutil.BulkIndexerResponseItem, err error) {
					if err != nil {
						e.log.Error().Err(err).Str("id", item.DocumentID).Msg("failed to index transaction")
					} else {
						e.log.Error().Str("id", item.DocumentID).Str("type", res.Error.Type).Str("reason", res.Error.Reason).Msg("failed to index transaction")
					}
				},
			},
		)

		if err != nil {
			return err
		}
	}

	err = bi.Close(context.Background())
	if err != nil {
		return err
	}

	biStats := bi.Stats()
	if biStats.NumFailed > 0 {
		return fmt.Errorf("failed indexing %d of %d docs", int64(biStats.NumFailed), int64(biStats.NumAdded))
	}
	e.log.Info().Uint64("indexed", biStats.NumFlushed).Msg("export complete")
	return nil
}
