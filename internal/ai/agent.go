package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"resto-pos/internal/database"
	"resto-pos/internal/models"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// RunAgent answers a manager's question with tool calls against the live
// database: menu lookups, price updates, open orders and revenue reports.
func RunAgent(userMessage string, apiKey string) (string, error) {
	ctx := context.Background()
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return "", err
	}
	defer client.Close()

	model := client.GenerativeModel("gemini-2.0-flash-001")

	today := time.Now().Format("2006-01-02")

	systemPrompt := fmt.Sprintf(`SYSTEM: Today is %s. You are the assistant for a restaurant point-of-sale.

	RULES:
	1. UPDATE: If a user asks to change a dish's price by NAME (e.g. "raise the Margherita to 12"), do NOT ask for the ID. Instead:
	   - Call 'check_menu' to find the ID.
	   - Call 'update_menu_price' using that ID.

	2. READ: If a user asks for the PRICE, CATEGORY or AVAILABILITY of a dish:
	   - Call 'check_menu' to get the full list and read the answer from it.

	3. SERVICE: If the user asks what is cooking or waiting, use 'list_open_orders'.

	4. MONEY: If the user asks about takings or revenue, use 'get_revenue_report'.

	USER: %s`, today, userMessage)

	model.Tools = []*genai.Tool{
		{
			FunctionDeclarations: []*genai.FunctionDeclaration{
				{
					Name:        "check_menu",
					Description: "Get the full menu. Use this to find ANY dish details like ID, Name, Price, Category or Availability.",
				},
				{
					Name:        "update_menu_price",
					Description: "Update the price of a specific menu item using its ID",
					Parameters: &genai.Schema{
						Type: genai.TypeObject,
						Properties: map[string]*genai.Schema{
							"menu_item_id": {Type: genai.TypeInteger, Description: "ID of the menu item"},
							"new_price":    {Type: genai.TypeNumber, Description: "New price"},
						},
						Required: []string{"menu_item_id", "new_price"},
					},
				},
				{
					Name:        "list_open_orders",
					Description: "List orders that are not yet completed or cancelled, with status and table.",
				},
				{
					Name:        "get_revenue_report",
					Description: "Get total payment revenue and order count for a date range.",
					Parameters: &genai.Schema{
						Type: genai.TypeObject,
						Properties: map[string]*genai.Schema{
							"start_date": {Type: genai.TypeString, Description: "Start date (YYYY-MM-DD)"},
							"end_date":   {Type: genai.TypeString, Description: "End date (YYYY-MM-DD)"},
						},
						Required: []string{"start_date", "end_date"},
					},
				},
			},
		},
	}

	session := model.StartChat()

	resp, err := session.SendMessage(ctx, genai.Text(systemPrompt))
	if err != nil {
		return "", err
	}

	for _, part := range resp.Candidates[0].Content.Parts {
		if funcCall, ok := part.(genai.FunctionCall); ok {

			if funcCall.Name == "check_menu" {
				var items []models.MenuItem
				database.DB.Find(&items)

				type SimpleItem struct {
					ID        uint    `json:"id"`
					Name      string  `json:"name"`
					Price     float64 `json:"price"`
					Category  string  `json:"category"`
					Available bool    `json:"available"`
				}
				var simpleList []SimpleItem
				for _, m := range items {
					simpleList = append(simpleList, SimpleItem{
						ID:        m.ID,
						Name:      m.Name,
						Price:     m.Price,
						Category:  m.Category,
						Available: m.Available,
					})
				}

				jsonBytes, _ := json.Marshal(simpleList)

				toolResp := genai.FunctionResponse{
					Name:     "check_menu",
					Response: map[string]interface{}{"menu": string(jsonBytes)},
				}

				finalResp, err := session.SendMessage(ctx, toolResp)
				if err != nil {
					return "", err
				}

				return handleRecursiveToolCalls(ctx, session, finalResp), nil
			}

			if funcCall.Name == "update_menu_price" {
				return executeUpdatePrice(ctx, session, funcCall), nil
			}

			if funcCall.Name == "list_open_orders" {
				return executeListOpenOrders(ctx, session), nil
			}

			if funcCall.Name == "get_revenue_report" {
				return executeRevenueReport(ctx, session, funcCall), nil
			}
		}
	}

	return printResponse(resp), nil
}

// --- HELPER FUNCTIONS ---

func handleRecursiveToolCalls(ctx context.Context, session *genai.ChatSession, resp *genai.GenerateContentResponse) string {
	for _, part := range resp.Candidates[0].Content.Parts {
		if funcCall, ok := part.(genai.FunctionCall); ok {
			if funcCall.Name == "update_menu_price" {
				return executeUpdatePrice(ctx, session, funcCall)
			}
		}
	}
	return printResponse(resp)
}

func executeUpdatePrice(ctx context.Context, session *genai.ChatSession, funcCall genai.FunctionCall) string {
	args := funcCall.Args
	itemID := int(args["menu_item_id"].(float64))
	newPrice := args["new_price"].(float64)

	result := database.DB.Model(&models.MenuItem{}).Where("id = ?", itemID).Update("price", newPrice)

	msg := "Success"
	if result.RowsAffected == 0 {
		msg = "Menu item ID not found"
	}

	finalResp, _ := session.SendMessage(ctx, genai.FunctionResponse{
		Name:     "update_menu_price",
		Response: map[string]interface{}{"status": msg, "new_price": newPrice},
	})
	return printResponse(finalResp)
}

func executeListOpenOrders(ctx context.Context, session *genai.ChatSession) string {
	var orders []models.Order
	database.DB.Where("status NOT IN ?", []string{models.StatusCompleted, models.StatusCancelled}).
		Order("created_at").Find(&orders)

	type SimpleOrder struct {
		OrderNumber string  `json:"order_number"`
		Status      string  `json:"status"`
		OrderType   string  `json:"order_type"`
		TableID     *uint   `json:"table_id,omitempty"`
		Total       float64 `json:"total"`
	}
	var simpleList []SimpleOrder
	for _, o := range orders {
		simpleList = append(simpleList, SimpleOrder{
			OrderNumber: o.OrderNumber,
			Status:      o.Status,
			OrderType:   o.OrderType,
			TableID:     o.TableID,
			Total:       o.Total,
		})
	}
	jsonBytes, _ := json.Marshal(simpleList)

	finalResp, _ := session.SendMessage(ctx, genai.FunctionResponse{
		Name:     "list_open_orders",
		Response: map[string]interface{}{"orders": string(jsonBytes)},
	})
	return printResponse(finalResp)
}

func executeRevenueReport(ctx context.Context, session *genai.ChatSession, funcCall genai.FunctionCall) string {
	args := funcCall.Args
	startStr := args["start_date"].(string)
	endStr := args["end_date"].(string)

	start, err1 := time.Parse("2006-01-02", startStr)
	end, err2 := time.Parse("2006-01-02", endStr)

	if err1 != nil || err2 != nil {
		return "Error: Dates must be in YYYY-MM-DD format."
	}
	end = end.Add(23*time.Hour + 59*time.Minute)

	report, err := database.GetRevenueReport(start, end)
	if err != nil {
		return "Error calculating revenue."
	}

	finalResp, _ := session.SendMessage(ctx, genai.FunctionResponse{
		Name: "get_revenue_report",
		Response: map[string]interface{}{
			"revenue":     report.TotalRevenue,
			"order_count": report.OrderCount,
		},
	})
	return printResponse(finalResp)
}

func printResponse(resp *genai.GenerateContentResponse) string {
	for _, part := range resp.Candidates[0].Content.Parts {
		if txt, ok := part.(genai.Text); ok {
			return string(txt)
		}
	}
	return "I completed the action."
}
