package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

const baseURL = "http://localhost:8080"

// BalanceResponse структура ответа с балансом
type BalanceResponse struct {
	Balance int `json:"balance"`
}

// PurchaseRequest структура запроса на покупку изображения
type PurchaseRequest struct {
	ImageID  int64  `json:"image_id"`
	UserName string `json:"user_name"`
}

// TransferRequest структура запроса на перевод монет
type TransferRequest struct {
	FromUsername string `json:"from_username"`
	ToUsername   string `json:"to_username"`
	Amount       int    `json:"amount"`
}

// PurchasedImage – элемент ответа от /api/purchased/{username}
type PurchasedImage struct {
	ID      int64     `json:"id"`
	Name    string    `json:"name"`
	URL     string    `json:"url"`
	BuyTime time.Time `json:"buytime"`
}

// requireServer пропускает тест, если сервер не запущен локально.
func requireServer(t *testing.T) {
	client := &http.Client{Timeout: 2 * time.Second}
	resp, err := client.Get(baseURL + "/live")
	if err != nil {
		t.Skipf("server is not running at %s: %v", baseURL, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Skipf("server at %s is not live: %d", baseURL, resp.StatusCode)
	}
}

func getBalance(t *testing.T, username string) (int, int) {
	resp, err := http.Get(baseURL + "/api/balance?username=" + username)
	assert.NoError(t, err, "Balance request should not error")
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, resp.StatusCode
	}
	var balanceResp BalanceResponse
	err = json.NewDecoder(resp.Body).Decode(&balanceResp)
	assert.NoError(t, err, "Decoding balance response should succeed")
	return balanceResp.Balance, resp.StatusCode
}

// сценарий проверки живости сервиса
func TestHealth(t *testing.T) {
	requireServer(t)

	resp, err := http.Get(baseURL + "/ready")
	assert.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode, "expected 200 for /ready when DB is up")
}

// сценарий запроса баланса неизвестного пользователя
func TestBalanceUnknownUser(t *testing.T) {
	requireServer(t)

	_, status := getBalance(t, "no_such_user_e2e")
	assert.Equal(t, http.StatusUnauthorized, status, "expected 401 for unknown user")
}

// сценарий запроса баланса без имени пользователя
func TestBalanceMissingUsername(t *testing.T) {
	requireServer(t)

	resp, err := http.Get(baseURL + "/api/balance")
	assert.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode, "expected 400 when username is missing")
}

// сценарий покупки изображения неизвестным пользователем
func TestPurchaseUnknownUser(t *testing.T) {
	requireServer(t)

	requestBody := PurchaseRequest{ImageID: 1, UserName: "no_such_user_e2e"}
	jsonBody, err := json.Marshal(requestBody)
	assert.NoError(t, err)

	resp, err := http.Post(baseURL+"/api/purchase", "application/json", bytes.NewBuffer(jsonBody))
	assert.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode, "expected 404 for unknown user")
}

// сценарий покупки несуществующего изображения
func TestPurchaseInvalidRequest(t *testing.T) {
	requireServer(t)

	// Нет user_name — валидация отклоняет запрос
	jsonBody := []byte(`{"image_id": 1}`)
	resp, err := http.Post(baseURL+"/api/purchase", "application/json", bytes.NewBuffer(jsonBody))
	assert.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode, "expected 400 for request without user_name")
}

// сценарий перевода с невалидной суммой
func TestTransferInvalidAmount(t *testing.T) {
	requireServer(t)

	requestBody := TransferRequest{FromUsername: "userA", ToUsername: "userB", Amount: -5}
	jsonBody, err := json.Marshal(requestBody)
	assert.NoError(t, err)

	resp, err := http.Post(baseURL+"/api/transfer", "application/json", bytes.NewBuffer(jsonBody))
	assert.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode, "expected 400 for negative amount")
}

// сценарий перевода самому себе
func TestTransferSelf(t *testing.T) {
	requireServer(t)

	requestBody := TransferRequest{FromUsername: "userA", ToUsername: "userA", Amount: 10}
	jsonBody, err := json.Marshal(requestBody)
	assert.NoError(t, err)

	resp, err := http.Post(baseURL+"/api/transfer", "application/json", bytes.NewBuffer(jsonBody))
	assert.NoError(t, err)
	defer resp.Body.Close()
	assert.NotEqual(t, http.StatusOK, resp.StatusCode, "self-transfer should not be allowed")
}

// сценарий списка покупок неизвестного пользователя: пустой массив, не ошибка
func TestPurchasedUnknownUser(t *testing.T) {
	requireServer(t)

	resp, err := http.Get(baseURL + "/api/purchased/no_such_user_e2e")
	assert.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode, "expected 200 with empty list for unknown user")

	var images []PurchasedImage
	err = json.NewDecoder(resp.Body).Decode(&images)
	assert.NoError(t, err)
	assert.Empty(t, images, "unknown user should have no purchases")
}

// сценарий списка идентификаторов покупок
func TestPurchasedIDsUnknownUser(t *testing.T) {
	requireServer(t)

	resp, err := http.Get(baseURL + "/api/purchased/ids/no_such_user_e2e")
	assert.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var ids []string
	err = json.NewDecoder(resp.Body).Decode(&ids)
	assert.NoError(t, err)
	assert.Empty(t, ids)
}
