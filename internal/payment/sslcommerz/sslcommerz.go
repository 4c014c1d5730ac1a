package sslcommerz

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"net/url"
	"sort"
	"strings"
)

// Driver speaks an SSLCommerz-style hosted-checkout protocol: the payer is
// redirected to a gateway session URL, and the gateway posts a signed
// callback when the payment settles. Signatures are HMAC-SHA256 over the
// sorted parameter set keyed with the store password.
type Driver struct {
	GatewayURL string
	StoreID    string
	StorePass  string
}

func NewDriver() *Driver {
	return &Driver{}
}

func (d *Driver) SetConfig(config map[string]interface{}) error {
	if val, ok := config["url"].(string); ok {
		baseURL := strings.TrimRight(val, "/")
		if !strings.HasSuffix(baseURL, "/session") {
			d.GatewayURL = baseURL + "/session"
		} else {
			d.GatewayURL = baseURL
		}
	} else {
		return errors.New("missing url in config")
	}

	if val, ok := config["store_id"].(string); ok {
		d.StoreID = val
	} else {
		return errors.New("missing store_id in config")
	}

	if val, ok := config["store_passwd"].(string); ok {
		d.StorePass = val
	} else {
		return errors.New("missing store_passwd in config")
	}
	return nil
}

func (d *Driver) Pay(orderID string, amount float64, notifyURL string, returnURL string, params map[string]interface{}) (string, error) {
	data := map[string]string{
		"store_id":     d.StoreID,
		"channel":      "card", // Default
		"tran_id":      orderID,
		"success_url":  returnURL,
		"ipn_url":      notifyURL,
		"product_name": "Traffic fine " + orderID,
		"amount":       fmt.Sprintf("%.2f", amount),
		"currency":     "BDT",
	}

	if val, ok := params["channel"].(string); ok && val != "" {
		data["channel"] = val
	}

	data["signature"] = d.sign(data)

	q := url.Values{}
	for k, v := range data {
		q.Set(k, v)
	}
	return d.GatewayURL + "?" + q.Encode(), nil
}

func (d *Driver) Notify(params map[string]interface{}) (bool, string, string, error) {
	data := make(map[string]string)
	var remoteSig string
	var orderID string
	var externalID string

	for k, v := range params {
		valStr := fmt.Sprintf("%v", v)
		if k == "signature" {
			remoteSig = valStr
			continue
		}
		data[k] = valStr
		if k == "tran_id" {
			orderID = valStr
		}
		if k == "bank_tran_id" {
			externalID = valStr
		}
	}

	localSig := d.sign(data)
	return hmac.Equal([]byte(localSig), []byte(remoteSig)), orderID, externalID, nil
}

// sign computes HMAC-SHA256 over "k=v&k=v..." with keys sorted, empty
// values and the signature field itself excluded.
func (d *Driver) sign(params map[string]string) string {
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var builder strings.Builder
	for _, k := range keys {
		v := params[k]
		if v == "" || k == "signature" {
			continue
		}
		if builder.Len() > 0 {
			builder.WriteString("&")
		}
		builder.WriteString(k)
		builder.WriteString("=")
		builder.WriteString(v)
	}

	mac := hmac.New(sha256.New, []byte(d.StorePass))
	mac.Write([]byte(builder.String()))
	return hex.EncodeToString(mac.Sum(nil))
}
