package schema

// TransactionStatuses are the values of transaction_status.
var TransactionStatuses = []string{
	"authorize", "capture", "settlement", "pending", "deny", "cancel",
	"expire", "failure", "refund", "partial_refund", "chargeback", "partial_chargeback",
}

// FraudStatuses are the values of fraud_status.
var FraudStatuses = []string{"accept", "challenge", "deny"}

func init() {
	registerAllResources()
}

func registerAllResources() {
	registerTransactionStatus()
	registerNotification()
	registerSnapTransaction()
	registerRefund()
	registerCardToken()
	registerSubscription()
	registerPayAccount()
}

// statusFields are shared by every transaction-shaped response.
func statusFields() map[string]*Schema {
	return map[string]*Schema{
		"status_code":        String("Gateway status code as a string, e.g. \"200\" or \"201\""),
		"status_message":     String("Human-readable outcome"),
		"transaction_id":     String("Gateway-assigned transaction identifier"),
		"order_id":           String("Merchant-assigned order identifier"),
		"merchant_id":        String("Merchant identifier"),
		"gross_amount":       Amount("Transaction amount"),
		"currency":           String("ISO 4217 currency code"),
		"payment_type":       String("Payment channel, e.g. bank_transfer, credit_card, gopay, qris"),
		"transaction_time":   DateTime("When the transaction was created"),
		"settlement_time":    DateTime("When the transaction settled"),
		"expiry_time":        DateTime("When a pending transaction expires"),
		"transaction_status": Enum("Lifecycle state of the transaction", TransactionStatuses...),
		"fraud_status":       Enum("Fraud detection outcome", FraudStatuses...),
		"approval_code":      String("Card issuer approval code"),
		"masked_card":        String("Masked card number"),
		"bank":               String("Acquiring or issuing bank"),
		"va_numbers": Array(Object("Virtual account", map[string]*Schema{
			"bank":      String("Bank code"),
			"va_number": String("Virtual account number"),
		}), "Virtual account numbers for bank transfers"),
		"refunds": Array(Object("Refund record", map[string]*Schema{
			"refund_chargeback_id": Int("Refund identifier"),
			"refund_amount":        Amount("Refunded amount"),
			"refund_key":           String("Merchant refund key"),
			"reason":               String("Refund reason"),
			"created_at":           DateTime("When the refund was made"),
		}), "Refunds applied to the transaction"),
	}
}

func registerTransactionStatus() {
	Register("transaction_status", Object(
		"Response of GET /v2/{id}/status and of the approve, deny, cancel, and expire actions",
		statusFields(),
		"status_code", "transaction_id", "order_id", "transaction_status",
	))
}

func registerNotification() {
	props := statusFields()
	props["signature_key"] = String("SHA-512 of order_id+status_code+gross_amount+server key")
	Register("notification", Object(
		"HTTP notification body POSTed by the gateway; only transaction_id is used to re-query the status",
		props,
		"transaction_id",
	))
}

func registerSnapTransaction() {
	Register("snap_transaction", Object(
		"Response of POST /snap/v1/transactions",
		map[string]*Schema{
			"token":        String("Checkout token for the Snap JS popup"),
			"redirect_url": String("Hosted checkout page URL"),
		},
		"token", "redirect_url",
	))
}

func registerRefund() {
	props := statusFields()
	props["refund_chargeback_id"] = Int("Refund identifier")
	props["refund_amount"] = Amount("Amount refunded by this request")
	props["refund_key"] = String("Merchant refund key, unique per refund")
	Register("refund", Object(
		"Response of POST /v2/{id}/refund and /v2/{id}/refund/online/direct",
		props,
		"status_code", "transaction_id", "refund_amount",
	))
}

func registerCardToken() {
	Register("card_token", Object(
		"Response of GET /v2/token and /v2/card/register",
		map[string]*Schema{
			"status_code":               String("Gateway status code"),
			"status_message":            String("Human-readable outcome"),
			"token_id":                  String("Single-use card token"),
			"saved_token_id":            String("Reusable token from card registration"),
			"masked_card":               String("Masked card number"),
			"hash":                      String("Card hash"),
			"redirect_url":              String("3-D Secure authentication URL"),
			"bank":                      String("Issuing bank"),
			"transaction_id":            String("Related transaction identifier"),
			"saved_token_id_expired_at": DateTime("When the saved token expires"),
		},
		"status_code",
	))
}

func registerSubscription() {
	Register("subscription", Object(
		"A recurring charge (/v1/subscriptions)",
		map[string]*Schema{
			"id":           String("Subscription identifier"),
			"name":         String("Merchant-assigned subscription name"),
			"amount":       Amount("Amount charged per interval"),
			"currency":     String("ISO 4217 currency code"),
			"created_at":   DateTime("When the subscription was created"),
			"status":       Enum("Whether the subscription charges", "active", "inactive"),
			"token":        String("Saved card token or linked account token"),
			"payment_type": Enum("Payment channel", "credit_card", "gopay"),
			"schedule": Object("Charging schedule", map[string]*Schema{
				"interval":              Int("Number of units between charges"),
				"interval_unit":         Enum("Interval unit", "day", "week", "month"),
				"max_interval":          Int("Number of charges before the subscription stops"),
				"start_time":            DateTime("First charge time"),
				"previous_execution_at": DateTime("Last charge time"),
				"next_execution_at":     DateTime("Next charge time"),
			}, "interval", "interval_unit"),
			"customer_details": Map("Customer name, email, and phone"),
			"metadata":         Map("Merchant metadata"),
		},
		"id", "name", "amount", "status", "schedule",
	))
}

func registerPayAccount() {
	Register("pay_account", Object(
		"A linked e-wallet account (/v2/pay/account)",
		map[string]*Schema{
			"status_code":    String("Gateway status code"),
			"payment_type":   String("E-wallet, e.g. gopay"),
			"account_id":     String("Linked account identifier"),
			"account_status": Enum("Linking state", "PENDING", "ENABLED", "EXPIRED", "DISABLED"),
			"actions": Array(Object("Follow-up action", map[string]*Schema{
				"name":   String("Action name, e.g. activation-deeplink"),
				"method": String("HTTP method"),
				"url":    String("Action URL"),
			}), "Actions the customer must complete"),
			"metadata": Map("Balances and payment options once linked"),
		},
		"account_id", "account_status",
	))
}
