package superops

// GraphQL documents for the SuperOps MSP API.
const (
	queryGetClientList = `query getClientList($input: ListInfoInput!) { getClientList(input: $input) { clients { accountId name } listInfo { hasMore totalCount }}}`

	queryGetTicketList = `query getTicketList($input: ListInfoInput!) { getTicketList(input: $input) { tickets { ticketId displayId subject status priority createdTime } listInfo { hasMore totalCount }}}`

	queryGetTicketConversationList = `query getTicketConversationList($input: TicketIdentifierInput!) { getTicketConversationList(input: $input) { conversationId content time user toUsers { user } ccUsers { user } bccUsers { user } attachments { fileName originalFileName fileSize } type }}`

	queryGetTicketNoteList = `query getTicketNoteList($input: TicketIdentifierInput!) { getTicketNoteList(input: $input) { noteId addedBy addedOn content attachments { fileName originalFileName fileSize } privacyType }}`
)
