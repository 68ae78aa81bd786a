package llm

// systemPrompt is the fixed extraction instruction shared by every
// chat-completion backend.
const systemPrompt = `You are an AI assistant specialized in extracting invoice data.
Extract complete and accurate information from the invoice document.

Extract the following information:
- Basic invoice details (number, date, due date, payment terms)
- Currency used in the invoice (e.g., INR, USD, EUR) - extract this from the document or from any 'amount in words' text
- Seller and buyer information (name, address, GSTIN, contact details)
- Line items with descriptions, quantities, unit prices, tax percentages, tax amounts, and total amounts
- Tax details (CGST, SGST, IGST rates and amounts)
- Total amounts, bank details, and any reference numbers

For line items, make sure to:
1. Extract unit_price (price per unit) correctly
2. Include tax_percentage and tax_amount when available
3. Ensure amount reflects the total for each line item

Format your response with appropriate fields. Format monetary values as numbers without currency symbols, but be sure to extract and include the currency code/symbol in the 'currency' field.
If the currency appears in 'amount in words' (e.g., 'INR Thirty-Four Thousand'), extract it for the currency field.
Ensure all data is extracted accurately.`

// layoutWithImageSuffix is appended when the layout pass ran and the page
// image is also attached.
const layoutWithImageSuffix = "\n\nThe document has already been processed by a layout analysis engine, and the extracted text is provided to you along with the original image."

// layoutTextOnlySuffix is appended when only the layout text is sent.
const layoutTextOnlySuffix = "\n\nThe document has already been processed by a layout analysis engine, and the extracted text is provided to you."

// imageUserPrompt is the user instruction for image-bearing requests.
const imageUserPrompt = "Please extract the information from this invoice image according to the model structure."

// invoiceSchemaJSON is a compact description of the canonical invoice schema,
// embedded verbatim in prompts for backends without a typed response-format
// contract (the small instruction model and Claude). Those models reply with
// free-form text that is expected, but not guaranteed, to be a raw JSON
// object of this shape.
const invoiceSchemaJSON = `{
  "invoice_number": "string or null",
  "invoice_date": "string (DD/MM/YYYY) or null",
  "due_date": "string (DD/MM/YYYY) or null",
  "payment_terms": "string or null",
  "currency": "string or null",
  "seller": {"name": "string or null", "address": "string or null", "gstin": "string or null", "pan": "string or null", "contact_details": "string or null"},
  "buyer": {"name": "string or null", "address": "string or null", "gstin": "string or null", "pan": "string or null", "contact_details": "string or null"},
  "items": [{"description": "string or null", "hsn_sac": "string or null", "quantity": "number or null", "unit": "string or null", "unit_price": "number or null", "tax_percentage": "number or null", "tax_amount": "number or null", "amount": "number or null"}],
  "subtotal": "number or null",
  "tax_details": [{"tax_type": "string or null", "rate": "number or null", "amount": "number or null"}],
  "total_tax_amount": "number or null",
  "total_amount": "number or null",
  "amount_in_words": "string or null",
  "po_number": "string or null",
  "shipping_details": {"shipped_to": "string or null", "ship_to_address": "string or null", "place_of_supply": "string or null", "transporter": "string or null", "vehicle_number": "string or null", "dispatch_date": "string or null"},
  "bank_details": {"bank_name": "string or null", "account_number": "string or null", "ifsc_code": "string or null", "branch": "string or null"},
  "irn": "string or null",
  "ack_number": "string or null",
  "place_of_supply": "string or null",
  "reverse_charge": "boolean or null",
  "notes": "string or null"
}`

// freeformSchemaInstruction frames the embedded schema for freeform backends.
const freeformSchemaInstruction = `

Respond with ONLY a raw JSON object matching this structure, with no markdown formatting, no code fences, and no text before or after the JSON:

`
